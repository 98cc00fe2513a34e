package lexchum

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goware/urlx"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
)

var (
	actionRe   = regexp.MustCompile(`^(/me|PESTERCHUM:ME)(\S*)`)
	colorRe    = regexp.MustCompile(`(?i)<c=(.*?)>`)
	colorEndRe = regexp.MustCompile(`(?i)</c>`)
	imageRe    = regexp.MustCompile(`(?i)<img src=['"](\S+)['"]\s*/>`)
	honkRe     = regexp.MustCompile(`(?i)\bhonk\b`)

	// URLPattern matches links with a scheme. A match only counts at the start
	// of a text run or after whitespace (see FindURLIndex).
	URLPattern = regexp.MustCompile(`(?i)(?:(?:https?|ftp)://|magnet:)\S+`)

	// LazyURLPattern matches bare www. links. A match preceded by "//" belongs
	// to a URLPattern match and is ignored.
	LazyURLPattern = regexp.MustCompile(`(?i)\bwww\.\S+`)

	// MemoPattern matches #memo references with their leading whitespace.
	MemoPattern = regexp.MustCompile(`(\s|^)(#[A-Za-z0-9_]+)`)

	// HandlePattern matches @handle mentions with their leading whitespace.
	HandlePattern = regexp.MustCompile(`(\s|^)(@[A-Za-z0-9_]+)`)

	normalizer = strings.NewReplacer("\n", " ", "\r", " ", "\t", "    ")
)

// recognizer claims matches of re inside unclaimed text runs.
type recognizer struct {
	re    *regexp.Regexp
	keep  func(run string, loc []int) bool
	build func(run string, loc []int) types.Segment
}

// piece is either a claimed segment or a run of unclaimed text.
type piece struct {
	seg  types.Segment
	text string
}

func (r recognizer) scan(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if p.seg != nil {
			out = append(out, p)
			continue
		}

		last := 0
		for _, loc := range r.re.FindAllStringSubmatchIndex(p.text, -1) {
			if r.keep != nil && !r.keep(p.text, loc) {
				continue
			}
			seg := r.build(p.text, loc)
			if seg == nil {
				continue
			}
			if loc[0] > last {
				out = append(out, piece{text: p.text[last:loc[0]]})
			}
			out = append(out, piece{seg: seg})
			last = loc[1]
		}
		if last < len(p.text) {
			out = append(out, piece{text: p.text[last:]})
		}
	}
	return out
}

func group(s string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

func afterSpace(run string, loc []int) bool {
	if loc[0] == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(run[:loc[0]])
	return unicode.IsSpace(r)
}

func notAfterSlashes(run string, loc []int) bool {
	return !strings.HasSuffix(run[:loc[0]], "//")
}

// FindURLIndex returns the spans of URLPattern matches in s that start at
// the beginning of s or after whitespace.
func FindURLIndex(s string) [][]int {
	var spans [][]int
	for _, loc := range URLPattern.FindAllStringIndex(s, -1) {
		if afterSpace(s, loc) {
			spans = append(spans, loc)
		}
	}
	return spans
}

// Lexer splits chat text into segments using a fixed recognizer order and a
// smiley table. A Lexer is immutable and safe for concurrent use.
type Lexer struct {
	smilies     map[string]string
	assets      map[string]string
	smileyRe    *regexp.Regexp
	recognizers []recognizer
}

// NewLexer returns a Lexer recognizing the shortcodes in smilies. A nil or
// empty table disables smiley recognition.
func NewLexer(smilies map[string]string) *Lexer {
	l := &Lexer{
		smilies: make(map[string]string, len(smilies)),
		assets:  make(map[string]string, len(smilies)),
	}

	keys := make([]string, 0, len(smilies))
	for k, v := range smilies {
		if k == "" {
			continue
		}
		keys = append(keys, k)
		l.smilies[k] = v
	}
	// longest first so ":billiardslarge:" wins over ":billiards:"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
		if _, ok := l.assets[l.smilies[k]]; !ok {
			l.assets[l.smilies[k]] = k
		}
	}
	if len(quoted) > 0 {
		l.smileyRe = regexp.MustCompile(strings.Join(quoted, "|"))
	}

	l.recognizers = []recognizer{
		{re: actionRe, build: func(s string, loc []int) types.Segment {
			return &Action{lit: s[loc[0]:loc[1]], command: group(s, loc, 1), suffix: group(s, loc, 2)}
		}},
		{re: colorRe, build: func(s string, loc []int) types.Segment {
			return newColor(s[loc[0]:loc[1]], group(s, loc, 1))
		}},
		{re: colorEndRe, build: func(s string, loc []int) types.Segment {
			return &ColorEnd{s[loc[0]:loc[1]]}
		}},
		{re: imageRe, build: func(s string, loc []int) types.Segment {
			return &Image{lit: s[loc[0]:loc[1]], src: group(s, loc, 1)}
		}},
		{re: URLPattern, keep: afterSpace, build: func(s string, loc []int) types.Segment {
			return NewLink(s[loc[0]:loc[1]])
		}},
		{re: LazyURLPattern, keep: notAfterSlashes, build: func(s string, loc []int) types.Segment {
			lit := s[loc[0]:loc[1]]
			if _, err := urlx.Parse(lit); err != nil {
				return nil
			}
			return NewLazyLink(lit)
		}},
		{re: MemoPattern, build: func(s string, loc []int) types.Segment {
			return NewMemo(group(s, loc, 1), group(s, loc, 2))
		}},
		{re: HandlePattern, build: func(s string, loc []int) types.Segment {
			return NewMention(group(s, loc, 1), group(s, loc, 2))
		}},
	}
	if l.smileyRe != nil {
		l.recognizers = append(l.recognizers, recognizer{re: l.smileyRe, build: func(s string, loc []int) types.Segment {
			key := s[loc[0]:loc[1]]
			return NewSmiley(key, l.smilies[key])
		}})
	}
	l.recognizers = append(l.recognizers, recognizer{re: honkRe, build: func(s string, loc []int) types.Segment {
		return NewSmiley(s[loc[0]:loc[1]], "honk.png")
	}})

	return l
}

// Smiley returns the asset for a shortcode.
func (l *Lexer) Smiley(key string) (string, bool) {
	asset, ok := l.smilies[key]
	return asset, ok
}

// SmileyPattern returns the compiled shortcode alternation, or nil when the
// table is empty.
func (l *Lexer) SmileyPattern() *regexp.Regexp { return l.smileyRe }

// ExclusionZones returns the spans of links, smilies, handles and memos in s.
// Spans are grouped by kind in that order and may overlap.
func (l *Lexer) ExclusionZones(s string) [][]int {
	zones := FindURLIndex(s)
	if l.smileyRe != nil {
		zones = append(zones, l.smileyRe.FindAllStringIndex(s, -1)...)
	}
	zones = append(zones, HandlePattern.FindAllStringIndex(s, -1)...)
	zones = append(zones, MemoPattern.FindAllStringIndex(s, -1)...)
	return zones
}

// Lex converts raw into segments. It never fails: anything unrecognized is
// Text. Color tags come out balanced and the result always ends in a Text.
func (l *Lexer) Lex(raw string) types.Segments {
	pieces := []piece{{text: normalizer.Replace(raw)}}
	for _, r := range l.recognizers {
		pieces = r.scan(pieces)
	}
	return balance(pieces)
}

func balance(pieces []piece) types.Segments {
	segs := make(types.Segments, 0, len(pieces)+1)
	open := 0
	for _, p := range pieces {
		seg := p.seg
		if seg == nil {
			seg = NewText(p.text)
		}
		switch seg.(type) {
		case *Color:
			open++
		case *ColorEnd:
			if open == 0 {
				continue
			}
			open--
		}
		segs = append(segs, seg)
	}
	for ; open > 0; open-- {
		segs = append(segs, NewColorEnd())
	}
	return Normalize(segs)
}

// Normalize merges adjacent Text, drops empty Text and guarantees a trailing
// Text.
func Normalize(segs types.Segments) types.Segments {
	out := make(types.Segments, 0, len(segs)+1)
	for _, s := range segs {
		if t, ok := s.(*Text); ok {
			if t.Literal() == "" {
				continue
			}
			if n := len(out); n > 0 {
				if prev, ok := out[n-1].(*Text); ok {
					out[n-1] = NewText(prev.lit + t.lit)
					continue
				}
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 || !IsText(out[len(out)-1]) {
		out = append(out, NewText(""))
	}
	return out
}

var defaultLexer = NewLexer(Smilies)

// Default returns the lexer for the built-in smiley table.
func Default() *Lexer { return defaultLexer }

// Lex converts raw into segments using the built-in smiley table.
func Lex(raw string) types.Segments { return defaultLexer.Lex(raw) }
