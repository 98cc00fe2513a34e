package quirks

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var funcNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultSprigFuncs are the sprig string functions exposed by SprigLoader
// when no allowlist is configured.
var DefaultSprigFuncs = []string{
	"title", "untitle", "swapcase", "snakecase", "camelcase",
	"kebabcase", "initials", "nospace", "trim", "shuffle",
}

// Builtins provides upper, lower, scramble and reverse.
func Builtins(rnd *Rand) Loader {
	return LoaderFunc("builtins", func() (map[string]Transform, error) {
		return map[string]Transform{
			"upper":    func(s string) string { return cases.Upper(language.Und).String(s) },
			"lower":    func(s string) string { return cases.Lower(language.Und).String(s) },
			"scramble": scrambler(rnd),
			"reverse":  reverse,
		}, nil
	})
}

func scrambler(rnd *Rand) Transform {
	return func(s string) string {
		rs := []rune(s)
		rnd.Shuffle(len(rs), func(i, j int) { rs[i], rs[j] = rs[j], rs[i] })
		return string(rs)
	}
}

func reverse(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

// SprigLoader exposes the string -> string functions of sprig named in allow.
// Names that don't exist or have another signature are skipped.
func SprigLoader(allow []string) Loader {
	if len(allow) == 0 {
		allow = DefaultSprigFuncs
	}
	return LoaderFunc("sprig", func() (map[string]Transform, error) {
		all := sprig.GenericFuncMap()
		funcs := make(map[string]Transform, len(allow))
		for _, name := range allow {
			switch fn := all[name].(type) {
			case func(string) string:
				funcs[name] = fn
			default:
				log.Debugf("sprig function %q is not a string transform, skipping", name)
			}
		}
		return funcs, nil
	})
}

// funcFile is a declarative transform function, one per YAML file.
type funcFile struct {
	Name    string        `yaml:"name"`
	Replace []replacePair `yaml:"replace"`
	Case    string        `yaml:"case"`
	Reverse bool          `yaml:"reverse"`
	Prefix  string        `yaml:"prefix"`
	Suffix  string        `yaml:"suffix"`
}

type replacePair struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

func (ff funcFile) transform() (Transform, error) {
	var recase func(string) string
	switch strings.ToLower(ff.Case) {
	case "", "none":
	case "upper":
		recase = func(s string) string { return cases.Upper(language.Und).String(s) }
	case "lower":
		recase = func(s string) string { return cases.Lower(language.Und).String(s) }
	case "title":
		recase = func(s string) string { return cases.Title(language.Und).String(s) }
	default:
		return nil, fmt.Errorf("%w: unknown case %q", ErrInvalidFuncFile, ff.Case)
	}

	pairs := append([]replacePair(nil), ff.Replace...)
	for _, p := range pairs {
		if p.From == "" {
			return nil, fmt.Errorf("%w: empty replace pattern", ErrInvalidFuncFile)
		}
	}

	return func(s string) string {
		for _, p := range pairs {
			s = strings.ReplaceAll(s, p.From, p.To)
		}
		if recase != nil {
			s = recase(s)
		}
		if ff.Reverse {
			s = reverse(s)
		}
		return ff.Prefix + s + ff.Suffix
	}, nil
}

// DirLoader reads declarative function files (*.yaml, *.yml) from dir.
// Files starting with "_" are ignored. A missing directory loads nothing.
func DirLoader(dir string) Loader {
	return LoaderFunc("dir:"+dir, func() (map[string]Transform, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}

		var errs ListError
		funcs := make(map[string]Transform)
		for _, e := range entries {
			name := e.Name()
			ext := filepath.Ext(name)
			if e.IsDir() || strings.HasPrefix(name, "_") || (ext != ".yaml" && ext != ".yml") {
				continue
			}

			fn, fname, err := loadFuncFile(filepath.Join(dir, name))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			funcs[fname] = fn
		}

		if len(errs) > 0 {
			return funcs, errs
		}
		return funcs, nil
	})
}

func loadFuncFile(path string) (Transform, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var ff funcFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidFuncFile, err)
	}
	if ff.Name == "" {
		base := filepath.Base(path)
		ff.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if !funcNameRe.MatchString(ff.Name) {
		return nil, "", fmt.Errorf("%w: bad function name %q", ErrInvalidFuncFile, ff.Name)
	}

	fn, err := ff.transform()
	if err != nil {
		return nil, "", err
	}
	return fn, ff.Name, nil
}
