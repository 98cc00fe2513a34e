package quirks

import (
	"fmt"
	"strconv"
	"strings"
)

// node is one element of a parsed replacement template.
type node interface {
	expand(groups []string, b *strings.Builder) error
}

type literal string

func (n literal) expand(_ []string, b *strings.Builder) error {
	b.WriteString(string(n))
	return nil
}

type backref int

func (n backref) expand(groups []string, b *strings.Builder) error {
	if int(n) >= len(groups) {
		return fmt.Errorf("%w: \\%d", ErrNoSuchGroup, int(n))
	}
	b.WriteString(groups[n])
	return nil
}

// call applies fn to the expansion of its children. The template root is a
// call with no function.
type call struct {
	name  string
	fn    Transform
	nodes []node
}

func (n *call) expand(groups []string, b *strings.Builder) error {
	var inner strings.Builder
	for _, child := range n.nodes {
		if err := child.expand(groups, &inner); err != nil {
			return err
		}
	}
	if n.fn == nil {
		b.WriteString(inner.String())
		return nil
	}
	b.WriteString(n.fn(inner.String()))
	return nil
}

// Template is a parsed replacement: literals, \N backreferences and nested
// function calls.
type Template struct {
	src  string
	root *call
}

func (t *Template) String() string { return t.src }

// Expand evaluates the template against one match. groups[0] is the whole
// match and groups[N] the Nth submatch ("" when it did not participate).
func (t *Template) Expand(groups []string) (string, error) {
	var b strings.Builder
	if err := t.root.expand(groups, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// parseTemplate never fails: names that aren't registered stay literal and
// a ")" that closes nothing is literal.
func (r *Registry) parseTemplate(src string) *Template {
	root := &call{}
	cur := root
	var stack []*call

	rest := src
	for len(rest) > 0 {
		loc := r.callRe.FindStringIndex(rest)
		if loc == nil {
			cur.nodes = append(cur.nodes, literal(rest))
			break
		}
		if loc[0] > 0 {
			cur.nodes = append(cur.nodes, literal(rest[:loc[0]]))
		}

		tok := rest[loc[0]:loc[1]]
		switch {
		case strings.HasPrefix(tok, `\`):
			n, err := strconv.Atoi(tok[1:])
			if err != nil {
				cur.nodes = append(cur.nodes, literal(tok))
				break
			}
			cur.nodes = append(cur.nodes, backref(n))
		case tok == ")":
			if len(stack) == 0 {
				cur.nodes = append(cur.nodes, literal(tok))
				break
			}
			cur, stack = stack[len(stack)-1], stack[:len(stack)-1]
		default:
			name := strings.TrimSuffix(tok, "(")
			fn, _ := r.Lookup(name)
			c := &call{name: name, fn: fn}
			cur.nodes = append(cur.nodes, c)
			stack = append(stack, cur)
			cur = c
		}
		rest = rest[loc[1]:]
	}

	return &Template{src: src, root: root}
}
