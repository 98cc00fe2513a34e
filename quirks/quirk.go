package quirks

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/shortuuid/v3"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

// QuirkHashLength is the length of Quirk.Hash.
const QuirkHashLength = 12

var ctagSplitRe = regexp.MustCompile(`(?i)(</?c=?.*?>)`)

// Env is what a quirk needs at apply time. Zero fields get defaults.
type Env struct {
	Registry   *Registry
	Rand       *Rand
	Misspeller Misspeller
	Lexer      *lexchum.Lexer
}

// NewEnv returns an Env that uses the current snapshot of fns.
func NewEnv(fns *Functions, rnd *Rand) *Env {
	env := &Env{Rand: rnd}
	if fns != nil {
		env.Registry = fns.Current()
	}
	return env
}

var emptyRegistry = NewRegistry(nil)

func (e *Env) registry() *Registry {
	if e == nil || e.Registry == nil {
		return emptyRegistry
	}
	return e.Registry
}

var defaultRand = NewRand(1)

func (e *Env) rand() *Rand {
	if e == nil || e.Rand == nil {
		return defaultRand
	}
	return e.Rand
}

func (e *Env) misspeller() Misspeller {
	if e == nil || e.Misspeller == nil {
		return NewKeyboardMisspeller(e.rand())
	}
	return e.Misspeller
}

func (e *Env) lexer() *lexchum.Lexer {
	if e == nil || e.Lexer == nil {
		return lexchum.Default()
	}
	return e.Lexer
}

// Quirk is one user defined text transform.
type Quirk interface {
	ID() string
	Type() types.QuirkType
	Group() string
	Enabled() bool
	Exclude() bool
	Record() types.QuirkRecord

	// Apply transforms one text run. first and last tell whether the run is
	// the first or last segment of the whole message.
	Apply(env *Env, text string, first, last bool) (string, error)

	String() string
	Hash() string
}

// New validates rec and builds the matching quirk. Invalid records are
// rejected with an ErrorTypeConfig error. Records without an ID get one.
func New(rec types.QuirkRecord) (Quirk, error) {
	if rec.ID == "" {
		rec.ID = shortuuid.New()
	}
	rec.Group = rec.GroupName()
	b := base{rec: rec}

	switch rec.Type {
	case types.QuirkPrefix:
		return &Prefix{b}, nil
	case types.QuirkSuffix:
		return &Suffix{b}, nil
	case types.QuirkReplace:
		if rec.From == "" {
			return nil, configError("new", describe(rec), ErrEmptyPattern)
		}
		return &Replace{b}, nil
	case types.QuirkRegexp:
		re, err := compile(rec)
		if err != nil {
			return nil, err
		}
		return &Regexp{base: b, re: re}, nil
	case types.QuirkRandom:
		re, err := compile(rec)
		if err != nil {
			return nil, err
		}
		return &Random{base: b, re: re}, nil
	case types.QuirkSpelling:
		if rec.Percentage < 0 || rec.Percentage > 100 {
			return nil, configError("new", describe(rec), fmt.Errorf("%w: %d", ErrBadPercentage, rec.Percentage))
		}
		return &Spelling{b}, nil
	}

	return nil, configError("new", "", fmt.Errorf("%w: %q", types.ErrUnknownQuirkType, rec.Type))
}

func compile(rec types.QuirkRecord) (*regexp.Regexp, error) {
	if rec.From == "" {
		return nil, configError("new", describe(rec), ErrEmptyPattern)
	}
	re, err := regexp.Compile(rec.From)
	if err != nil {
		return nil, configError("new", describe(rec), fmt.Errorf("%w: %s", ErrBadPattern, err))
	}
	return re, nil
}

// describe is the label shown in quirk lists.
func describe(rec types.QuirkRecord) string {
	switch rec.Type {
	case types.QuirkPrefix:
		return fmt.Sprintf("BEGIN WITH: %s", rec.Value)
	case types.QuirkSuffix:
		return fmt.Sprintf("END WITH: %s", rec.Value)
	case types.QuirkReplace:
		return fmt.Sprintf("REPLACE %s WITH %s", rec.From, rec.To)
	case types.QuirkRegexp:
		return fmt.Sprintf("REGEXP: %s REPLACED WITH %s", rec.From, rec.To)
	case types.QuirkRandom:
		quoted := make([]string, len(rec.RandomList))
		for i, r := range rec.RandomList {
			quoted[i] = "'" + r + "'"
		}
		return fmt.Sprintf("REGEXP: %s RANDOMLY REPLACED WITH [%s]", rec.From, strings.Join(quoted, ", "))
	case types.QuirkSpelling:
		return fmt.Sprintf("MISPELLER: %d%%", rec.Percentage)
	}
	return string(rec.Type)
}

type base struct {
	rec types.QuirkRecord
}

func (b *base) ID() string                { return b.rec.ID }
func (b *base) Type() types.QuirkType     { return b.rec.Type }
func (b *base) Group() string             { return b.rec.GroupName() }
func (b *base) Enabled() bool             { return b.rec.Enabled() }
func (b *base) Exclude() bool             { return b.rec.Exclude }
func (b *base) Record() types.QuirkRecord { return b.rec }
func (b *base) String() string            { return describe(b.rec) }

// Hash identifies the quirk's behaviour; records differing only in ID hash
// the same.
func (b *base) Hash() string {
	rec := b.rec
	rec.ID = ""
	payload, _ := json.Marshal(rec)
	return fastHash(payload)
}

// Prefix prepends its value to the first segment.
type Prefix struct{ base }

func (q *Prefix) Apply(_ *Env, text string, first, _ bool) (string, error) {
	if !q.Enabled() || !first {
		return text, nil
	}
	return q.rec.Value + text, nil
}

// Suffix appends its value to the last segment.
type Suffix struct{ base }

func (q *Suffix) Apply(_ *Env, text string, _, last bool) (string, error) {
	if !q.Enabled() || !last {
		return text, nil
	}
	return text + q.rec.Value, nil
}

// Replace substitutes every literal occurrence of From.
type Replace struct{ base }

func (q *Replace) Apply(_ *Env, text string, _, _ bool) (string, error) {
	if !q.Enabled() {
		return text, nil
	}
	return strings.ReplaceAll(text, q.rec.From, q.rec.To), nil
}

// anchored reports whether pattern must be skipped for this segment: a
// leading ^ only applies to the first segment and a trailing $ to the last.
func anchored(pattern string, first, last bool) bool {
	if !first && strings.HasPrefix(pattern, "^") {
		return true
	}
	return !last && strings.HasSuffix(pattern, "$")
}

// Regexp replaces matches with an expanded template.
type Regexp struct {
	base
	re *regexp.Regexp
}

func (q *Regexp) Apply(env *Env, text string, first, last bool) (string, error) {
	if !q.Enabled() || anchored(q.rec.From, first, last) {
		return text, nil
	}
	tmpl := env.registry().Template(q.rec.To)
	return replaceAll(q.re, text, tmpl.Expand)
}

// Random replaces each match with a template picked at random.
type Random struct {
	base
	re *regexp.Regexp
}

func (q *Random) Apply(env *Env, text string, first, last bool) (string, error) {
	list := q.rec.RandomList
	if !q.Enabled() || len(list) == 0 || anchored(q.rec.From, first, last) {
		return text, nil
	}
	reg, rnd := env.registry(), env.rand()
	return replaceAll(q.re, text, func(groups []string) (string, error) {
		return reg.Template(list[rnd.Intn(len(list))]).Expand(groups)
	})
}

// Spelling misspells each word with probability Percentage/100. Color tags
// inside a word are left intact.
type Spelling struct{ base }

func (q *Spelling) Apply(env *Env, text string, _, _ bool) (string, error) {
	if !q.Enabled() {
		return text, nil
	}
	rnd, m := env.rand(), env.misspeller()
	chance := float64(q.rec.Percentage) / 100

	words := strings.Split(text, " ")
	for i, w := range words {
		if rnd.Float64() >= chance {
			continue
		}
		if !ctagSplitRe.MatchString(w) {
			words[i] = m.Misspell(w)
			continue
		}

		var b strings.Builder
		last := 0
		for _, loc := range ctagSplitRe.FindAllStringIndex(w, -1) {
			if loc[0] > last {
				b.WriteString(m.Misspell(w[last:loc[0]]))
			}
			b.WriteString(w[loc[0]:loc[1]])
			last = loc[1]
		}
		if last < len(w) {
			b.WriteString(m.Misspell(w[last:]))
		}
		words[i] = b.String()
	}
	return strings.Join(words, " "), nil
}

// replaceAll is regexp.ReplaceAllStringFunc with submatches and errors.
func replaceAll(re *regexp.Regexp, s string, repl func(groups []string) (string, error)) (string, error) {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		out, err := repl(groups)
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(out)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
