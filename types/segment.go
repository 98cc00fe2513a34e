package types

import (
	"errors"
	"fmt"
	"strings"
)

// Segment is one typed unit of a lexed chat message.
type Segment interface {
	IsNil() bool                // A typed nil will fail `seg == nil`. We need to unbox to test.
	Literal() string            // value as read from input.
	FormatText(f Format) string // value rendered for the given output format.
	fmt.Stringer                // alias for Literal() for printing.
}

// Segments is an ordered lexed message.
type Segments []Segment

// FormatText renders every segment in f and concatenates the result.
func (segs Segments) FormatText(f Format) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.FormatText(f))
	}
	return b.String()
}

// Literal joins the source text of every segment.
func (segs Segments) Literal() string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Literal())
	}
	return b.String()
}

func (segs Segments) String() string { return segs.Literal() }

// Format represents the encoding segments get rendered to
type Format int

const (
	// HTMLFmt is used for the live conversation view
	HTMLFmt Format = iota
	// BBCodeFmt is used for forum-style log exports
	BBCodeFmt
	// CTagFmt is the <c=r,g,b>...</c> format sent over the wire
	CTagFmt
	// TextFmt strips all formatting
	TextFmt
)

var ErrUnknownFormat = errors.New("error: unknown format")

var formatNames = map[Format]string{
	HTMLFmt:   "html",
	BBCodeFmt: "bbcode",
	CTagFmt:   "ctag",
	TextFmt:   "text",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format named s. "pchum" is accepted as an alias of
// "ctag" and "plaintext" as an alias of "text".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return HTMLFmt, nil
	case "bbcode":
		return BBCodeFmt, nil
	case "ctag", "pchum":
		return CTagFmt, nil
	case "text", "plaintext":
		return TextFmt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}
