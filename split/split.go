// Package split breaks a lexed message into chunks that each fit in one IRC
// PRIVMSG and carry balanced color tags.
package split

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

const (
	// MaxLineLength is the IRC line limit including CRLF.
	MaxLineLength = 512

	// worst cases assumed when the real values are unknown
	defaultNickLen   = 30
	defaultIdentLen  = 10
	maxHostLen       = 63 // RFC 2812
	defaultTargetLen = 40

	// ':' + " PRIVMSG " + ' ' + ':' + CRLF, with some slack
	framingLen = 14

	// minSplit is the least room worth splitting text into. With less left
	// the text moves to the next chunk whole.
	minSplit = 30
)

// MaxMessageLength returns how many bytes of text fit in one PRIVMSG from
// nick!ident@host to target. Empty values assume the worst case.
func MaxMessageLength(nick, ident, target string) int {
	limit := MaxLineLength - framingLen

	if nick == "" {
		limit -= defaultNickLen
	} else {
		limit -= len(nick)
	}
	limit -= 2 // '!' and '@'
	if ident == "" {
		limit -= defaultIdentLen
	} else {
		limit -= len(ident)
	}
	limit -= maxHostLen

	if target == "" {
		limit -= defaultTargetLen
	} else {
		limit -= len(target)
	}
	return limit
}

type splitter struct {
	f        types.Format
	max      int
	closeLen int

	working  types.Segments
	open     []*lexchum.Color
	reopened int
	curLen   int
	visible  bool

	out []string
}

// fresh reports whether the chunk holds nothing but the colors carried over
// from the previous one.
func (s *splitter) fresh() bool {
	return len(s.working) == s.reopened
}

// left is the room remaining once every open color is closed.
func (s *splitter) left() int {
	return s.max - s.curLen - s.closeLen*len(s.open)
}

func (s *splitter) add(seg types.Segment, n int) {
	switch c := seg.(type) {
	case *lexchum.Color:
		s.open = append(s.open, c)
	case *lexchum.ColorEnd:
		s.open = s.open[:len(s.open)-1]
	case *lexchum.Text:
		if strings.TrimSpace(c.Literal()) != "" {
			s.visible = true
		}
	default:
		if n > 0 {
			s.visible = true
		}
	}
	s.working = append(s.working, seg)
	s.curLen += n
}

// flush closes the open colors, emits the chunk if it shows anything and
// starts the next chunk with the open colors reopened.
func (s *splitter) flush() {
	if s.visible {
		chunk := append(types.Segments(nil), s.working...)
		for range s.open {
			chunk = append(chunk, lexchum.NewColorEnd())
		}
		assertBalanced(chunk)
		s.out = append(s.out, chunk.FormatText(s.f))
	}

	s.working = s.working[:0]
	s.curLen = 0
	s.visible = false
	for _, c := range s.open {
		s.working = append(s.working, c)
		s.curLen += len(c.FormatText(s.f))
	}
	s.reopened = len(s.working)
}

// cut splits text so the rendered head fits in budget, preferring the last
// space. It always makes progress: at least one rune goes to the head.
func (s *splitter) cut(text string, budget int) (head, rest string) {
	limit, used := 0, 0
	for i, r := range text {
		n := len(lexchum.NewText(string(r)).FormatText(s.f))
		if used+n > budget {
			break
		}
		used += n
		limit = i + utf8.RuneLen(r)
	}
	if limit == 0 {
		_, size := utf8.DecodeRuneInString(text)
		limit = size
	}

	point := strings.LastIndex(text[:limit], " ")
	if point <= 0 {
		point = limit
	}
	return strings.TrimRightFunc(text[:point], unicode.IsSpace), strings.TrimLeftFunc(text[point:], unicode.IsSpace)
}

// Split renders segs in format f as chunks of at most maxBytes bytes. Every
// chunk closes the colors it opens and reopens the ones still open from the
// previous chunk. Text is broken at the last space that fits, or mid-word if
// there is none. A token that cannot fit even in an empty chunk is emitted
// oversized on its own rather than dropped. The result is never empty for
// non-empty input.
func Split(segs types.Segments, f types.Format, maxBytes int) []string {
	if len(segs) == 0 {
		return nil
	}

	s := &splitter{f: f, max: maxBytes, closeLen: lexchum.CloseTagLen(f)}
	queue := append(types.Segments(nil), segs...)

	for len(queue) > 0 {
		seg := queue[0]
		queue = queue[1:]

		if _, ok := seg.(*lexchum.ColorEnd); ok {
			// closing tags are already paid for by left()
			if len(s.open) > 0 {
				s.add(seg, s.closeLen)
			}
			continue
		}

		n := len(seg.FormatText(f))
		need := n
		if _, ok := seg.(*lexchum.Color); ok {
			// an opened color has to leave room for its own close
			need += s.closeLen
		}
		if need <= s.left() {
			s.add(seg, n)
			continue
		}

		if text, ok := seg.(*lexchum.Text); ok {
			if !s.fresh() && s.left() <= minSplit {
				s.flush()
				queue = append(types.Segments{seg}, queue...)
				continue
			}

			head, rest := s.cut(text.Literal(), s.left())
			if head != "" {
				s.add(lexchum.NewText(head), len(lexchum.NewText(head).FormatText(f)))
			}
			s.flush()
			if rest != "" {
				queue = append(types.Segments{lexchum.NewText(rest)}, queue...)
			}
			continue
		}

		if s.fresh() {
			s.add(seg, n)
			continue
		}
		s.flush()
		queue = append(types.Segments{seg}, queue...)
	}
	s.flush()

	if len(s.out) == 0 {
		return []string{segs.FormatText(f)}
	}
	return s.out
}
