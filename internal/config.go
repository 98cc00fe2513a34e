package internal

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
)

var (
	ErrConfigPathMissing = errors.New("error: config file missing")
	ErrInvalidConfig     = errors.New("error: invalid config")
)

// Config contains the client side settings of the message pipeline
type Config struct {
	Handle string `yaml:"handle"`
	Ident  string `yaml:"ident" default:"pcc31"`
	Color  string `yaml:"color" default:"0,0,0"`

	Profiles     string   `yaml:"profiles" default:"~/.pesterchum/profiles"`
	FunctionsDir string   `yaml:"functions_dir" default:"~/.pesterchum/quirks"`
	SprigFuncs   []string `yaml:"sprig_funcs"`

	// ConvoMaxLength is the chunk size for conversations; memos use the
	// computed IRC budget less MemoReserve for the initials wrapper.
	ConvoMaxLength int `yaml:"convo_max_length" default:"300"`
	MemoReserve    int `yaml:"memo_reserve" default:"25"`

	// Seed fixes the quirk random source. Zero seeds it from the OS.
	Seed  int64 `yaml:"seed"`
	Debug bool  `yaml:"debug"`

	path string
}

// NewConfig returns a Config with every default set
func NewConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults fills in every field left at its zero value.
func (c *Config) setDefaults() {
	if err := defaults.Set(c); err != nil {
		log.WithError(err).Warn("error setting config defaults")
	}
	if c.SprigFuncs == nil {
		c.SprigFuncs = append([]string(nil), quirks.DefaultSprigFuncs...)
	}
}

func (c *Config) validate() error {
	if c.ConvoMaxLength < 30 {
		return fmt.Errorf("%w: convo_max_length %d is below 30", ErrInvalidConfig, c.ConvoMaxLength)
	}
	if c.MemoReserve < 0 {
		return fmt.Errorf("%w: memo_reserve %d is negative", ErrInvalidConfig, c.MemoReserve)
	}
	return nil
}

func (c *Config) expand() error {
	for _, p := range []*string{&c.Profiles, &c.FunctionsDir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ProfilePath is where the profile for handle is stored
func (c *Config) ProfilePath(handle string) string {
	return filepath.Join(c.Profiles, ProfileFilename(handle))
}

// ConfigFromReader reads an io.Reader `r` and pares it into a *Config object
func ConfigFromReader(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load loads a configuration from the given path
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ConfigFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", path, err)
	}
	cfg.path = path

	return cfg, nil
}

func (c *Config) String() string {
	data, err := yaml.MarshalWithOptions(c, yaml.Indent(4))
	if err != nil {
		log.WithError(err).Warn("error marshalling config")
		return ""
	}
	return string(data)
}

// Save saves the configuration to the provided path
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return ErrConfigPathMissing
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.MarshalWithOptions(c, yaml.Indent(4))
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return err
	}

	if err = f.Sync(); err != nil {
		return err
	}

	c.path = path

	return f.Close()
}
