// Command chumtext runs text through the Pesterchum message pipeline: lexing,
// rendering, quirks and splitting.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/internal"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
)

const defaultConfig = "~/.pesterchum/chumtext.yaml"

type app struct {
	v    *viper.Viper
	conf *internal.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "chumtext",
		Short:         "Lex, quirk and split Pesterchum messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", defaultConfig, "config file")
	flags.BoolP("debug", "D", false, "enable debug logging")
	flags.String("handle", "", "chum handle (overrides config)")
	flags.String("profile", "", "profile file (default from config and handle)")
	flags.String("functions-dir", "", "quirk function directory (overrides config)")
	flags.Int64("seed", 0, "random seed for quirks (0 uses config)")

	root.AddCommand(
		newLexCmd(a),
		newRenderCmd(a),
		newFromHTMLCmd(a),
		newApplyCmd(a),
		newSplitCmd(a),
		newSendCmd(a),
		newFuncsCmd(a),
	)
	return root
}

func (a *app) setup(flags *pflag.FlagSet) error {
	a.v.SetEnvPrefix("CHUMTEXT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(flags); err != nil {
		return err
	}

	if a.v.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	path, err := homedir.Expand(a.v.GetString("config"))
	if err != nil {
		return err
	}
	conf, err := internal.Load(path)
	switch {
	case os.IsNotExist(err):
		log.Debugf("no config at %s, using defaults", path)
		conf = internal.NewConfig()
	case err != nil:
		return err
	}

	if h := a.v.GetString("handle"); h != "" {
		conf.Handle = h
	}
	if d := a.v.GetString("functions-dir"); d != "" {
		if conf.FunctionsDir, err = homedir.Expand(d); err != nil {
			return err
		}
	}
	if s := a.v.GetInt64("seed"); s != 0 {
		conf.Seed = s
	}
	conf.Debug = conf.Debug || a.v.GetBool("debug")
	if conf.Debug {
		log.SetLevel(log.DebugLevel)
	}

	a.conf = conf
	return nil
}

func (a *app) profile() (*internal.Profile, error) {
	path := a.v.GetString("profile")
	if path == "" {
		path = a.conf.ProfilePath(a.conf.Handle)
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return internal.LoadOrCreateProfile(path, a.conf.Handle, a.conf.Color)
}

func (a *app) functions() *quirks.Functions {
	return quirks.NewFunctions(
		quirks.Builtins(quirks.NewRand(a.conf.Seed)),
		quirks.SprigLoader(a.conf.SprigFuncs),
		quirks.DirLoader(a.conf.FunctionsDir),
	)
}

// input joins args, or reads stdin when there are none or the only one
// is "-".
func input(args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
