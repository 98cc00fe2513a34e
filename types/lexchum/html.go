package lexchum

import (
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FromHTML converts display HTML (as produced by the HTML renderer or a rich
// text input box) back into wire text: smiley images become shortcodes,
// colored spans become <c=...></c> tags and anchors become their text.
func (l *Lexer) FromHTML(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("error parsing html: %w", err)
	}

	var b strings.Builder
	l.writeNodes(&b, doc.Find("body").Contents())
	return b.String(), nil
}

// FromHTML converts display HTML back into wire text using the built-in
// smiley table.
func FromHTML(src string) (string, error) { return defaultLexer.FromHTML(src) }

func (l *Lexer) writeNodes(b *strings.Builder, sel *goquery.Selection) {
	sel.Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
		case html.ElementNode:
			l.writeElement(b, s)
		}
	})
}

func (l *Lexer) writeElement(b *strings.Builder, s *goquery.Selection) {
	switch goquery.NodeName(s) {
	case "img":
		src, _ := s.Attr("src")
		if strings.HasPrefix(src, "smilies/") {
			if key, ok := l.assets[path.Base(src)]; ok {
				b.WriteString(key)
				return
			}
		}
		if src != "" {
			b.WriteString(NewImage(src).Literal())
		}
	case "br":
		b.WriteString(" ")
	case "span", "font":
		color := styleColor(s)
		if c, ok := s.Attr("color"); ok && color == "" {
			color = c
		}
		if color == "" {
			l.writeNodes(b, s.Contents())
			return
		}
		b.WriteString(NewColor(color).Literal())
		l.writeNodes(b, s.Contents())
		b.WriteString(NewColorEnd().Literal())
	default:
		l.writeNodes(b, s.Contents())
	}
}

// styleColor extracts the color property of an inline style attribute.
func styleColor(s *goquery.Selection) string {
	style, ok := s.Attr("style")
	if !ok {
		return ""
	}
	for _, decl := range strings.Split(style, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(kv[0]), "color") {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}
