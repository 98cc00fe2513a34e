package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/internal"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/session"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/split"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

func newLexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lex [text]",
		Short: "Print the segments of a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, seg := range lexchum.Lex(text) {
				fmt.Fprintf(out, "%3d %-18s %q\n", i, strings.TrimPrefix(fmt.Sprintf("%T", seg), "*lexchum."), seg.Literal())
			}
			return nil
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Render a message as html, bbcode, ctag or text",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := types.ParseFormat(format)
			if err != nil {
				return err
			}
			text, err := input(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lexchum.Render(lexchum.Lex(text), f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "output format: html, bbcode, ctag or text")
	return cmd
}

func newFromHTMLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fromhtml [html]",
		Short: "Convert display HTML back to ctag text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args)
			if err != nil {
				return err
			}
			out, err := lexchum.FromHTML(text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newApplyCmd(a *app) *cobra.Command {
	var showGroups bool

	cmd := &cobra.Command{
		Use:   "apply [text]",
		Short: "Apply the profile's quirks to a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.profile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showGroups {
				for _, g := range profile.Quirks.Groups() {
					fmt.Fprintf(out, "%s:\n", g.Name)
					for _, q := range g.Quirks {
						state := " "
						if q.Enabled() {
							state = "*"
						}
						fmt.Fprintf(out, "  %s %s  %s\n", state, q.Hash(), q)
					}
				}
			}

			if len(args) == 0 && showGroups {
				return nil
			}
			text, err := input(args)
			if err != nil {
				return err
			}

			env := quirks.NewEnv(a.functions(), quirks.NewRand(a.conf.Seed))
			segs, err := profile.Quirks.Apply(env, lexchum.Lex(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, segs.FormatText(types.CTagFmt))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showGroups, "list", "l", false, "list the quirks by group first")
	return cmd
}

func newSplitCmd(a *app) *cobra.Command {
	var (
		format   string
		maxBytes int
		target   string
	)

	cmd := &cobra.Command{
		Use:   "split [text]",
		Short: "Split a message into IRC sized chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := types.ParseFormat(format)
			if err != nil {
				return err
			}
			text, err := input(args)
			if err != nil {
				return err
			}
			if maxBytes <= 0 {
				maxBytes = split.MaxMessageLength(a.conf.Handle, a.conf.Ident, target)
			}

			out := cmd.OutOrStdout()
			chunks := split.Split(lexchum.Lex(text), f, maxBytes)
			for i, c := range chunks {
				fmt.Fprintf(out, "%3d %8s  %s\n", i, humanize.Bytes(uint64(len(c))), c)
			}
			fmt.Fprintf(out, "%d chunks, limit %s\n", len(chunks), humanize.Bytes(uint64(maxBytes)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "ctag", "chunk format")
	cmd.Flags().IntVarP(&maxBytes, "max", "m", 0, "max bytes per chunk (default: computed IRC budget)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "message target used for the IRC budget")
	return cmd
}

func newSendCmd(a *app) *cobra.Command {
	var (
		target   string
		flavor   string
		ooc      bool
		noQuirks bool
		display  bool
	)

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Process a message as the client would before sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, err := session.ParseFlavor(flavor)
			if err != nil {
				return err
			}
			text, err := input(args)
			if err != nil {
				return err
			}
			profile, err := a.profile()
			if err != nil {
				return err
			}

			sess := session.NewSession(target, fl)
			sess.OOC = ooc
			sess.ApplyQuirks = !noQuirks

			p := internal.NewPipeline(a.conf, profile, a.functions())
			if fl == session.FlavorMenus {
				p.SetTesterQuirks(profile.Quirks)
			}

			task := internal.NewSendTask(p, sess, text)
			if err := internal.RunTask("send", task); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sent := task.Outgoing()
			for _, c := range sent.Chunks {
				fmt.Fprintln(out, c)
			}
			if display || fl == session.FlavorMenus {
				for _, d := range sent.Display {
					fmt.Fprintln(out, d)
				}
			}

			log.WithField("elapsed", task.Elapsed()).Debugf(
				"sent %d chunks (%s) to %s", len(sent.Chunks), humanize.Bytes(uint64(sent.Bytes())), target,
			)
			for _, name := range p.Metrics().Names() {
				log.Debugf("%s = %s", name, humanize.Comma(p.Metrics().Counters()[name]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "chum handle or #memo")
	cmd.Flags().StringVar(&flavor, "flavor", "convo", "convo, memos or menus (quirk tester)")
	cmd.Flags().BoolVar(&ooc, "ooc", false, "send out of character")
	cmd.Flags().BoolVar(&noQuirks, "no-quirks", false, "do not apply quirks")
	cmd.Flags().BoolVar(&display, "display", false, "also print the HTML shown in the window")
	return cmd
}

func newFuncsCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "funcs",
		Short: "List the functions usable in quirk replacements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fns := a.functions()
			out := cmd.OutOrStdout()
			list := func() {
				reg := fns.Current()
				fmt.Fprintf(out, "version %d: %s()\n", reg.Version(), strings.Join(reg.Names(), "(), "))
			}
			list()

			if !watch {
				return nil
			}

			if err := os.MkdirAll(a.conf.FunctionsDir, 0755); err != nil {
				return err
			}
			w, err := internal.NewWatcher(a.conf.FunctionsDir, fns)
			if err != nil {
				return err
			}
			w.OnReload(func(task *internal.FuncTask) {
				if err := task.Error(); err != nil {
					fmt.Fprintf(out, "reload failed: %s\n", err)
				}
				list()
			})
			w.Start()
			log.Infof("watching %s", a.conf.FunctionsDir)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return w.Stop()
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and reload on changes")
	return cmd
}
