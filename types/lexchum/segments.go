package lexchum

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
)

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", ">", "&gt;", "<", "&lt;")

	// only the img element and its usual attributes survive.
	imagePolicy = func() *bluemonday.Policy {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowImages()
		return p
	}()
)

// Segment AST structs

type Text struct {
	lit string
}

var _ types.Segment = (*Text)(nil)

func NewText(txt string) *Text { return &Text{txt} }
func (n *Text) IsNil() bool    { return n == nil }
func (n *Text) Literal() string {
	if n == nil {
		return ""
	}
	return n.lit
}
func (n *Text) String() string { return n.Literal() }
func (n *Text) FormatText(f types.Format) string {
	if f == types.HTMLFmt {
		return htmlEscaper.Replace(n.Literal())
	}
	return n.Literal()
}

// Color opens a color span.
type Color struct {
	lit   string
	spec  string
	isRGB bool
	rgb   [3]uint8
}

var _ types.Segment = (*Color)(nil)

// NewColor builds the <c=spec> tag.
func NewColor(spec string) *Color {
	return newColor(fmt.Sprintf("<c=%s>", spec), spec)
}

func newColor(lit, spec string) *Color {
	n := &Color{lit: lit, spec: spec}
	n.rgb, n.isRGB = resolveColor(spec)
	return n
}

func (n *Color) IsNil() bool     { return n == nil }
func (n *Color) Literal() string { return n.lit }
func (n *Color) String() string  { return n.Literal() }

// Spec returns the color as written in the tag.
func (n *Color) Spec() string { return n.spec }

// Hex returns the resolved color as #rrggbb. Invalid colors resolve to black.
func (n *Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", n.rgb[0], n.rgb[1], n.rgb[2]) }

// RGB is the resolved color as "r,g,b".
func (n *Color) RGB() string { return fmt.Sprintf("%d,%d,%d", n.rgb[0], n.rgb[1], n.rgb[2]) }

func (n *Color) FormatText(f types.Format) string {
	switch f {
	case types.HTMLFmt:
		return fmt.Sprintf(`<span style="color:%s">`, n.Hex())
	case types.BBCodeFmt:
		return fmt.Sprintf("[color=%s]", n.Hex())
	case types.CTagFmt:
		if n.isRGB {
			return fmt.Sprintf("<c=%s>", n.spec)
		}
		return fmt.Sprintf("<c=%d,%d,%d>", n.rgb[0], n.rgb[1], n.rgb[2])
	}
	return ""
}

// ColorEnd closes the innermost color span.
type ColorEnd struct {
	lit string
}

var _ types.Segment = (*ColorEnd)(nil)

func NewColorEnd() *ColorEnd         { return &ColorEnd{"</c>"} }
func (n *ColorEnd) IsNil() bool      { return n == nil }
func (n *ColorEnd) Literal() string  { return n.lit }
func (n *ColorEnd) String() string   { return n.Literal() }
func (n *ColorEnd) FormatText(f types.Format) string {
	switch f {
	case types.HTMLFmt:
		return "</span>"
	case types.BBCodeFmt:
		return "[/color]"
	case types.CTagFmt:
		return "</c>"
	}
	return ""
}

// CloseTagLen is the rendered byte length of a ColorEnd in f.
func CloseTagLen(f types.Format) int {
	return len(NewColorEnd().FormatText(f))
}

type Smiley struct {
	lit   string
	asset string
}

var _ types.Segment = (*Smiley)(nil)

func NewSmiley(key, asset string) *Smiley { return &Smiley{key, asset} }
func (n *Smiley) IsNil() bool              { return n == nil }
func (n *Smiley) Literal() string          { return n.lit }
func (n *Smiley) String() string           { return n.Literal() }
func (n *Smiley) Key() string              { return n.lit }
func (n *Smiley) Asset() string            { return n.asset }
func (n *Smiley) FormatText(f types.Format) string {
	if f == types.HTMLFmt {
		return fmt.Sprintf("<img src='smilies/%s' alt='%s' title='%s' />", n.asset, n.lit, n.lit)
	}
	return n.lit
}

// Link is a hyperlink. Lazy links were written without a scheme.
type Link struct {
	lit    string
	target string
	lazy   bool
}

var _ types.Segment = (*Link)(nil)

func NewLink(target string) *Link { return &Link{lit: target, target: target} }

// NewLazyLink builds a link for a bare www. address; target gets a scheme.
func NewLazyLink(lit string) *Link {
	return &Link{lit: lit, target: "http://" + lit, lazy: true}
}

func (n *Link) IsNil() bool     { return n == nil }
func (n *Link) Literal() string { return n.lit }
func (n *Link) String() string  { return n.Literal() }
func (n *Link) Target() string  { return n.target }
func (n *Link) IsLazy() bool    { return n.lazy }
func (n *Link) FormatText(f types.Format) string {
	switch f {
	case types.HTMLFmt:
		target := html.EscapeString(n.target)
		return fmt.Sprintf("<a href='%s'>%s</a>", target, target)
	case types.BBCodeFmt:
		return fmt.Sprintf("[url]%s[/url]", n.target)
	}
	return n.lit
}

// Image is an inline <img src=...> reference.
type Image struct {
	lit string
	src string
}

var _ types.Segment = (*Image)(nil)

func NewImage(src string) *Image    { return &Image{fmt.Sprintf("<img src='%s' />", src), src} }
func (n *Image) IsNil() bool         { return n == nil }
func (n *Image) Literal() string     { return n.lit }
func (n *Image) String() string      { return n.Literal() }
func (n *Image) Source() string      { return n.src }
func (n *Image) FormatText(f types.Format) string {
	switch f {
	case types.HTMLFmt:
		return imagePolicy.Sanitize(n.lit)
	case types.BBCodeFmt:
		if strings.HasPrefix(n.src, "http://") || strings.HasPrefix(n.src, "https://") {
			return fmt.Sprintf("[img]%s[/img]", n.src)
		}
	}
	return ""
}

// Mention is an @handle reference, including the whitespace before it.
type Mention struct {
	lit    string
	space  string
	handle string
}

var _ types.Segment = (*Mention)(nil)

func NewMention(space, handle string) *Mention { return &Mention{space + handle, space, handle} }
func (n *Mention) IsNil() bool                 { return n == nil }
func (n *Mention) Literal() string             { return n.lit }
func (n *Mention) String() string              { return n.Literal() }
func (n *Mention) Space() string               { return n.space }
func (n *Mention) Handle() string              { return n.handle }
func (n *Mention) FormatText(f types.Format) string {
	if f == types.HTMLFmt {
		return fmt.Sprintf("%s<a href='%s'>%s</a>", n.space, n.handle, n.handle)
	}
	return n.lit
}

// Memo is a #channel reference, including the whitespace before it.
type Memo struct {
	lit     string
	space   string
	channel string
}

var _ types.Segment = (*Memo)(nil)

func NewMemo(space, channel string) *Memo { return &Memo{space + channel, space, channel} }
func (n *Memo) IsNil() bool               { return n == nil }
func (n *Memo) Literal() string           { return n.lit }
func (n *Memo) String() string            { return n.Literal() }
func (n *Memo) Space() string             { return n.space }
func (n *Memo) Channel() string           { return n.channel }
func (n *Memo) FormatText(f types.Format) string {
	if f == types.HTMLFmt {
		return fmt.Sprintf("%s<a href='%s'>%s</a>", n.space, n.channel, n.channel)
	}
	return n.lit
}

// Action is a leading /me (or PESTERCHUM:ME) command.
type Action struct {
	lit     string
	command string
	suffix  string
}

var _ types.Segment = (*Action)(nil)

func NewAction(command, suffix string) *Action { return &Action{command + suffix, command, suffix} }
func (n *Action) IsNil() bool                  { return n == nil }
func (n *Action) Literal() string              { return n.lit }
func (n *Action) String() string               { return n.Literal() }
func (n *Action) Command() string              { return n.command }
func (n *Action) Suffix() string               { return n.suffix }
func (n *Action) FormatText(f types.Format) string {
	if f == types.HTMLFmt {
		return htmlEscaper.Replace(n.lit)
	}
	return n.lit
}

// Render converts segs to a string in f.
func Render(segs types.Segments, f types.Format) string {
	return segs.FormatText(f)
}

// IsText reports whether seg is plain text.
func IsText(seg types.Segment) bool {
	_, ok := seg.(*Text)
	return ok
}

// StripColors drops every color tag from segs. Action messages carry no color.
func StripColors(segs types.Segments) types.Segments {
	out := make(types.Segments, 0, len(segs))
	for _, s := range segs {
		switch s.(type) {
		case *Color, *ColorEnd:
			continue
		}
		out = append(out, s)
	}
	return Normalize(out)
}
