package quirks

import (
	"unicode"
)

// Misspeller mangles a single word.
type Misspeller interface {
	Misspell(word string) string
}

// qwerty neighbours of each letter
var adjacent = map[rune]string{
	'q': "wa", 'w': "qeas", 'e': "wrsd", 'r': "etdf", 't': "ryfg",
	'y': "tugh", 'u': "yihj", 'i': "uojk", 'o': "ipkl", 'p': "ol",
	'a': "qwsz", 's': "awedxz", 'd': "serfcx", 'f': "drtgvc", 'g': "ftyhbv",
	'h': "gyujnb", 'j': "huikmn", 'k': "jiolm", 'l': "kop",
	'z': "asx", 'x': "zsdc", 'c': "xdfv", 'v': "cfgb", 'b': "vghn",
	'n': "bhjm", 'm': "njk",
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// KeyboardMisspeller simulates typing mistakes: hitting a neighbouring key,
// swapping two letters, an extra letter or a wrong letter.
type KeyboardMisspeller struct {
	rnd *Rand
}

func NewKeyboardMisspeller(rnd *Rand) *KeyboardMisspeller {
	return &KeyboardMisspeller{rnd: rnd}
}

func (m *KeyboardMisspeller) Misspell(word string) string {
	rs := []rune(word)
	if len(letters(rs)) == 0 {
		return word
	}

	n := 1
	if len(rs) > 6 {
		n += m.rnd.Intn(2)
	}
	for ; n > 0; n-- {
		rs = m.mutate(rs)
	}
	return string(rs)
}

func letters(rs []rune) []int {
	var idx []int
	for i, r := range rs {
		if unicode.IsLetter(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

func matchCase(like, r rune) rune {
	if unicode.IsUpper(like) {
		return unicode.ToUpper(r)
	}
	return r
}

func (m *KeyboardMisspeller) mutate(rs []rune) []rune {
	idx := letters(rs)
	if len(idx) == 0 {
		return rs
	}
	i := idx[m.rnd.Intn(len(idx))]
	orig := rs[i]

	switch m.rnd.Intn(4) {
	case 0: // mistype
		if near, ok := adjacent[unicode.ToLower(orig)]; ok {
			rs[i] = matchCase(orig, rune(near[m.rnd.Intn(len(near))]))
			return rs
		}
		fallthrough
	case 1: // transpose
		if len(rs) > 1 {
			j := i + 1
			if j == len(rs) {
				j = i - 1
			}
			rs[i], rs[j] = rs[j], rs[i]
			return rs
		}
		fallthrough
	case 2: // insert
		extra := matchCase(orig, rune(alphabet[m.rnd.Intn(len(alphabet))]))
		out := make([]rune, 0, len(rs)+1)
		out = append(out, rs[:i+1]...)
		out = append(out, extra)
		return append(out, rs[i+1:]...)
	default: // replace
		rs[i] = matchCase(orig, rune(alphabet[m.rnd.Intn(len(alphabet))]))
		return rs
	}
}
