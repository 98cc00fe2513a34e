package quirks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

func mustQuirk(t *testing.T, rec types.QuirkRecord) Quirk {
	t.Helper()
	q, err := New(rec)
	require.NoError(t, err)
	return q
}

type upperMisspeller struct{}

func (upperMisspeller) Misspell(w string) string { return strings.ToUpper(w) }

func testEnv() *Env {
	rnd := NewRand(42)
	return &Env{
		Registry:   NewFunctions(Builtins(rnd)).Current(),
		Rand:       rnd,
		Misspeller: upperMisspeller{},
	}
}

func apply(t *testing.T, env *Env, c *Collection, segs types.Segments) string {
	t.Helper()
	out, err := c.Apply(env, segs)
	require.NoError(t, err)
	return lexchum.Render(out, types.CTagFmt)
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	t.Run("AssignsID", func(t *testing.T) {
		q := mustQuirk(t, types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "})
		assert.NotEmpty(q.ID())
		assert.Equal(types.DefaultQuirkGroup, q.Group())
		assert.True(q.Enabled())
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := []struct {
			rec types.QuirkRecord
			err error
		}{
			{types.QuirkRecord{Type: types.QuirkRegexp, From: "(", To: "x"}, ErrBadPattern},
			{types.QuirkRecord{Type: types.QuirkRegexp, From: "(?<=a)b", To: "x"}, ErrBadPattern},
			{types.QuirkRecord{Type: types.QuirkRandom, From: ""}, ErrEmptyPattern},
			{types.QuirkRecord{Type: types.QuirkReplace, From: ""}, ErrEmptyPattern},
			{types.QuirkRecord{Type: types.QuirkSpelling, Percentage: 101}, ErrBadPercentage},
			{types.QuirkRecord{Type: types.QuirkSpelling, Percentage: -1}, ErrBadPercentage},
			{types.QuirkRecord{Type: "gradient"}, types.ErrUnknownQuirkType},
		}
		for _, tt := range tests {
			_, err := New(tt.rec)
			assert.Error(err)
			assert.True(IsConfigError(err))
			assert.False(IsApplyError(err))
			assert.True(errors.Is(err, tt.err), err.Error())
			assert.True(errors.Is(err, &Error{Type: ErrorTypeConfig}))
		}
	})
}

func TestQuirkString(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		rec  types.QuirkRecord
		want string
	}{
		{types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "}, "BEGIN WITH: > "},
		{types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"}, "END WITH:  :B"},
		{types.QuirkRecord{Type: types.QuirkReplace, From: "a", To: "4"}, "REPLACE a WITH 4"},
		{types.QuirkRecord{Type: types.QuirkRegexp, From: "o+", To: "0"}, "REGEXP: o+ REPLACED WITH 0"},
		{types.QuirkRecord{Type: types.QuirkRandom, From: "x", RandomList: []string{"a", "b"}}, "REGEXP: x RANDOMLY REPLACED WITH ['a', 'b']"},
		{types.QuirkRecord{Type: types.QuirkSpelling, Percentage: 15}, "MISPELLER: 15%"},
	}
	for _, tt := range tests {
		assert.Equal(tt.want, mustQuirk(t, tt.rec).String())
	}
}

func TestQuirkHash(t *testing.T) {
	assert := assert.New(t)

	a := mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"})
	b := mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"})
	c := mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: " :P"})

	assert.NotEqual(a.ID(), b.ID())
	assert.Equal(a.Hash(), b.Hash())
	assert.NotEqual(a.Hash(), c.Hash())
	assert.Len(a.Hash(), QuirkHashLength)
}

func TestQuirkApply(t *testing.T) {
	env := testEnv()
	off := false

	tests := []struct {
		name        string
		rec         types.QuirkRecord
		in          string
		first, last bool
		want        string
	}{
		{"PrefixFirst", types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "}, "hi", true, false, "> hi"},
		{"PrefixNotFirst", types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "}, "hi", false, true, "hi"},
		{"SuffixLast", types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"}, "hi", false, true, "hi :B"},
		{"SuffixNotLast", types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"}, "hi", true, false, "hi"},
		{"Disabled", types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B", On: &off}, "hi", true, true, "hi"},
		{"Replace", types.QuirkRecord{Type: types.QuirkReplace, From: "i", To: "1"}, "hi hi", false, false, "h1 h1"},
		{"RegexpBackref", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w)(\w*)`, To: `\2\1ay`}, "pig latin", false, false, "igpay atinlay"},
		{"RegexpWholeMatch", types.QuirkRecord{Type: types.QuirkRegexp, From: `o+`, To: `<\0>`}, "foo", false, false, "f<oo>"},
		{"RegexpUpper", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w+)`, To: `upper(\1)`}, "hi there", false, false, "HI THERE"},
		{"RegexpNested", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w+)`, To: `reverse(upper(\1))!`}, "abc", false, false, "CBA!"},
		{"RegexpUnknownFunction", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w+)`, To: `foo(\1)`}, "abc", false, false, "foo(abc)"},
		{"RegexpStrayParen", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w+)`, To: `\1)`}, "abc", false, false, "abc)"},
		{"RegexpUnclosedCall", types.QuirkRecord{Type: types.QuirkRegexp, From: `(\w+)`, To: `upper(\1`}, "abc", false, false, "ABC"},
		{"RegexpOptionalGroup", types.QuirkRecord{Type: types.QuirkRegexp, From: `a(x)?`, To: `[\1]`}, "ab", false, false, "[]b"},
		{"RegexpStartAnchorFirst", types.QuirkRecord{Type: types.QuirkRegexp, From: `^h`, To: `H`}, "hi", true, false, "Hi"},
		{"RegexpStartAnchorNotFirst", types.QuirkRecord{Type: types.QuirkRegexp, From: `^h`, To: `H`}, "hi", false, true, "hi"},
		{"RegexpEndAnchorLast", types.QuirkRecord{Type: types.QuirkRegexp, From: `i$`, To: `I`}, "hi", false, true, "hI"},
		{"RegexpEndAnchorNotLast", types.QuirkRecord{Type: types.QuirkRegexp, From: `i$`, To: `I`}, "hi", true, false, "hi"},
		{"RandomSingle", types.QuirkRecord{Type: types.QuirkRandom, From: `o`, RandomList: []string{"upper(\\0)"}}, "foo", false, false, "fOO"},
		{"RandomEmptyList", types.QuirkRecord{Type: types.QuirkRandom, From: `o`}, "foo", false, false, "foo"},
		{"SpellingAll", types.QuirkRecord{Type: types.QuirkSpelling, Percentage: 100}, "hi <c=red>there</c> you", false, false, "HI <c=red>THERE</c> YOU"},
		{"SpellingNone", types.QuirkRecord{Type: types.QuirkSpelling, Percentage: 0}, "hi there", false, false, "hi there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			q := mustQuirk(t, tt.rec)
			out, err := q.Apply(env, tt.in, tt.first, tt.last)
			assert.NoError(err)
			assert.Equal(tt.want, out)
		})
	}
}

func TestRandomChoosesFromList(t *testing.T) {
	assert := assert.New(t)

	q := mustQuirk(t, types.QuirkRecord{Type: types.QuirkRandom, From: `x`, RandomList: []string{"a", "b"}})
	out, err := q.Apply(testEnv(), strings.Repeat("x", 64), false, false)
	assert.NoError(err)
	assert.Len(out, 64)
	assert.Empty(strings.Trim(out, "ab"))
	assert.Contains(out, "a")
	assert.Contains(out, "b")
}

func TestNewRandSeed(t *testing.T) {
	draw := func(r *Rand) []int {
		out := make([]int, 8)
		for i := range out {
			out[i] = r.Intn(1 << 30)
		}
		return out
	}

	assert.Equal(t, draw(NewRand(413)), draw(NewRand(413)))
	assert.NotEqual(t, draw(NewRand(0)), draw(NewRand(0)))

	q := mustQuirk(t, types.QuirkRecord{Type: types.QuirkRandom, From: `o`, RandomList: strings.Split("0123456789", "")})
	first, err := q.Apply(NewEnv(nil, NewRand(0)), strings.Repeat("o", 20), false, false)
	require.NoError(t, err)
	second, err := q.Apply(NewEnv(nil, NewRand(0)), strings.Repeat("o", 20), false, false)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCollectionApply(t *testing.T) {
	env := testEnv()

	t.Run("Suffix", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: " :B"}))
		out, err := c.Apply(env, lexchum.Lex("hi"))
		require.NoError(t, err)
		assert.Equal(t, "hi :B", lexchum.Render(out, types.TextFmt))
	})

	t.Run("PrefixSuffixGating", func(t *testing.T) {
		c := NewCollection(
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "}),
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: " <"}),
		)
		segs := lexchum.Lex("a :3: b")
		require.Len(t, segs, 3)
		assert.Equal(t, "> a :3: b <", apply(t, env, c, segs))
	})

	t.Run("Order", func(t *testing.T) {
		c := NewCollection(
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkReplace, From: "a", To: "b"}),
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkReplace, From: "b", To: "c"}),
		)
		assert.Equal(t, "cc", apply(t, env, c, lexchum.Lex("ab")))
	})

	t.Run("LeadingToken", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkPrefix, Value: "> "}))
		assert.Equal(t, ">  <c=255,0,0>hi</c>", apply(t, env, c, lexchum.Lex("<c=red>hi</c>")))
	})

	t.Run("RelexInsertedTokens", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: `cat`, To: `:3:`}))
		out, err := c.Apply(env, lexchum.Lex("cat"))
		require.NoError(t, err)
		require.Len(t, out, 2)
		_, ok := out[0].(*lexchum.Smiley)
		assert.True(t, ok)
	})

	t.Run("ExcludeLeavesURL", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: "o", To: "0", Exclude: true}))
		segs := types.Segments{lexchum.NewText("look http://foo.com/boo ok")}
		assert.Equal(t, "l00k http://foo.com/boo 0k", apply(t, env, c, segs))

		c = NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: "o", To: "0"}))
		assert.Equal(t, "l00k http://f00.c0m/b00 0k", apply(t, env, c, segs))
	})

	t.Run("ExcludeHandlesAndSmilies", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkReplace, From: "o", To: "0", Exclude: true}))
		segs := types.Segments{lexchum.NewText("hey @bob look :cool: #memo ok")}
		assert.Equal(t, "hey @bob l00k :cool: #memo 0k", apply(t, env, c, segs))
	})

	t.Run("ExcludePrefixSuffix", func(t *testing.T) {
		c := NewCollection(
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkPrefix, Value: "[", Exclude: true}),
			mustQuirk(t, types.QuirkRecord{Type: types.QuirkSuffix, Value: "]", Exclude: true}),
		)
		segs := types.Segments{lexchum.NewText("a @bob b @sue c")}
		assert.Equal(t, "[a @bob b @sue c]", apply(t, env, c, segs))
	})

	t.Run("ExcludeAnchors", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: "^(.)", To: "upper(\\1)", Exclude: true}))
		segs := types.Segments{lexchum.NewText("a:3:b")}
		assert.Equal(t, "A:3:B", apply(t, env, c, segs))
	})

	t.Run("MissingGroup", func(t *testing.T) {
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: `(a)`, To: `\2`}))
		out, err := c.Apply(env, lexchum.Lex("abc"))
		assert.Nil(t, out)
		assert.True(t, IsApplyError(err))
		assert.True(t, errors.Is(err, ErrNoSuchGroup))
	})

	t.Run("PanickingFunction", func(t *testing.T) {
		boom := &Env{Registry: NewRegistry(map[string]Transform{
			"boom": func(string) string { panic("kaboom") },
		})}
		c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: `a`, To: `boom(\0)`}))
		out, err := c.Apply(boom, lexchum.Lex("abc"))
		assert.Nil(t, out)
		assert.True(t, IsApplyError(err))
		assert.True(t, errors.Is(err, ErrFunctionPanic))
	})
}

func TestExcludeZones(t *testing.T) {
	assert := assert.New(t)

	// a smiley inside a link displaces the link
	s := "http://x.y/:3: #m"
	assert.Equal([][]int{{11, 14}, {14, 17}}, excludeZones(lexchum.Default(), s))

	c := NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkReplace, From: "x", To: "X", Exclude: true}))
	assert.Equal("http://X.y/:3: #m", apply(t, testEnv(), c, types.Segments{lexchum.NewText(s)}))

	// three chained overlaps: only the first pair is resolved
	lexer := lexchum.NewLexer(map[string]string{":x ": "x.png"})
	s = "http://q/:x @bob"
	assert.Equal([][]int{{9, 12}, {11, 16}}, excludeZones(lexer, s))

	env := testEnv()
	env.Lexer = lexer
	c = NewCollection(mustQuirk(t, types.QuirkRecord{Type: types.QuirkReplace, From: "q", To: "Q", Exclude: true}))
	assert.Equal("http://Q/:x  @bob", apply(t, env, c, types.Segments{lexchum.NewText(s)}))
}

func TestCollectionEdit(t *testing.T) {
	assert := assert.New(t)

	a := mustQuirk(t, types.QuirkRecord{ID: "a", Type: types.QuirkPrefix, Value: "> ", Group: "Typing"})
	b := mustQuirk(t, types.QuirkRecord{ID: "b", Type: types.QuirkSuffix, Value: " <"})
	c := mustQuirk(t, types.QuirkRecord{ID: "c", Type: types.QuirkReplace, From: "x", To: "y", Group: "Typing"})

	coll := NewCollection(a, b)
	assert.NoError(coll.Add(c))
	assert.True(IsConfigError(coll.Add(c)))
	assert.Equal(3, coll.Len())

	ids := func() []string {
		var out []string
		for _, q := range coll.Quirks() {
			out = append(out, q.ID())
		}
		return out
	}

	before := coll.Hash()
	assert.NoError(coll.Move("c", 0))
	assert.Equal([]string{"c", "a", "b"}, ids())
	assert.NotEqual(before, coll.Hash())

	assert.NoError(coll.Move("c", 99))
	assert.Equal([]string{"a", "b", "c"}, ids())
	assert.True(errors.Is(coll.Move("zzz", 0), ErrQuirkNotFound))

	groups := coll.Groups()
	assert.Len(groups, 2)
	assert.Equal(types.DefaultQuirkGroup, groups[0].Name)
	assert.Equal("Typing", groups[1].Name)
	assert.Equal("a", groups[1].Quirks[0].ID())
	assert.Equal("c", groups[1].Quirks[1].ID())

	clone := coll.Clone()
	assert.NoError(coll.Remove("b"))
	assert.Equal([]string{"a", "c"}, ids())
	assert.Equal(3, clone.Len())
	assert.True(errors.Is(coll.Remove("b"), ErrQuirkNotFound))

	recs := coll.Records()
	assert.Len(recs, 2)
	assert.Equal("a", recs[0].ID)
	assert.Equal(types.QuirkReplace, recs[1].Type)
}

func TestFromRecords(t *testing.T) {
	assert := assert.New(t)

	coll, err := FromRecords(types.QuirkRecords{
		{Type: types.QuirkPrefix, Value: "> "},
		{Type: types.QuirkRegexp, From: "(", To: "x"},
		{Type: types.QuirkSuffix, Value: " <"},
	})
	assert.Error(err)

	var errs ListError
	assert.True(errors.As(err, &errs))
	assert.Len(errs, 1)
	assert.True(IsConfigError(errs[0]))
	assert.Equal(2, coll.Len())
}

func TestFunctions(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	write("leet.yaml", "name: leet\nreplace:\n  - from: e\n    to: \"3\"\n  - from: o\n    to: \"0\"\ncase: upper\nsuffix: \"!\"\n")
	write("_skipped.yaml", "name: skipped\n")
	write("upper.yml", "name: upper\nreverse: true\n")
	write("notes.txt", "not a function")

	rnd := NewRand(7)
	fns := NewFunctions(Builtins(rnd), SprigLoader([]string{"title", "upper", "add"}), DirLoader(dir))

	reg := fns.Current()
	assert.Equal([]string{"leet", "lower", "reverse", "scramble", "title", "upper"}, reg.Names())
	assert.Equal(uint64(1), reg.Version())

	leet, ok := reg.Lookup("leet")
	assert.True(ok)
	assert.Equal("H3LL0!", leet("hello"))

	upper, _ := reg.Lookup("upper")
	assert.Equal("ABC", upper("abc"))

	title, _ := reg.Lookup("title")
	assert.Equal("Hello World", title("hello world"))

	scramble, _ := reg.Lookup("scramble")
	assert.ElementsMatch([]rune("scramble"), []rune(scramble("scramble")))

	// reload keeps old snapshots intact
	write("shout.yaml", "case: upper\nsuffix: \"!!\"\n")
	write("broken.yaml", "name: \"no spaces allowed\"\n")
	err := fns.Reload()
	assert.Error(err)

	assert.Equal(uint64(2), fns.Current().Version())
	_, ok = reg.Lookup("shout")
	assert.False(ok)
	shout, ok := fns.Current().Lookup("shout")
	assert.True(ok)
	assert.Equal("HEY!!", shout("hey"))

	q := mustQuirk(t, types.QuirkRecord{Type: types.QuirkRegexp, From: `\w+`, To: `shout(\0)`})
	out, err := q.Apply(&Env{Registry: reg}, "hey", false, false)
	assert.NoError(err)
	assert.Equal("shout(hey)", out)

	out, err = q.Apply(NewEnv(fns, rnd), "hey", false, false)
	assert.NoError(err)
	assert.Equal("HEY!!", out)
}

func TestDirLoaderMissingDir(t *testing.T) {
	funcs, err := DirLoader(filepath.Join(t.TempDir(), "nope")).Load()
	assert.NoError(t, err)
	assert.Empty(t, funcs)
}

func TestKeyboardMisspeller(t *testing.T) {
	assert := assert.New(t)

	m := NewKeyboardMisspeller(NewRand(3))
	assert.Equal("1234", m.Misspell("1234"))
	assert.Equal("", m.Misspell(""))

	for i := 0; i < 50; i++ {
		out := m.Misspell("HELLO")
		assert.Equal(strings.ToUpper(out), out)
		assert.True(len(out) >= 5 && len(out) <= 6, out)

		out = m.Misspell("keyboards")
		assert.True(len(out) >= 9 && len(out) <= 11, out)
	}
}
