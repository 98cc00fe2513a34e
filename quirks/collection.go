package quirks

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

// Group is a named set of quirks for display. Grouping never changes the
// order quirks are applied in.
type Group struct {
	Name   string
	Quirks []Quirk
}

// Collection is an ordered list of quirks. It is safe for concurrent use;
// Apply holds a read lock for the whole chain.
type Collection struct {
	mu     sync.RWMutex
	quirks []Quirk
}

func NewCollection(qs ...Quirk) *Collection {
	return &Collection{quirks: append([]Quirk(nil), qs...)}
}

// FromRecords builds a collection from persisted records. Every invalid
// record is reported; valid ones are still loaded.
func FromRecords(recs types.QuirkRecords) (*Collection, error) {
	c := NewCollection()
	var errs ListError
	for _, rec := range recs {
		q, err := New(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.Add(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return c, errs
	}
	return c, nil
}

func (c *Collection) indexOf(id string) int {
	for i, q := range c.quirks {
		if q.ID() == id {
			return i
		}
	}
	return -1
}

// Add appends q to the end of the chain.
func (c *Collection) Add(q Quirk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(q.ID()) >= 0 {
		return configError("add", q.String(), fmt.Errorf("%w: %s", ErrDuplicateQuirk, q.ID()))
	}
	c.quirks = append(c.quirks, q)
	return nil
}

// Remove deletes the quirk with the given id.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrQuirkNotFound, id)
	}
	c.quirks = append(c.quirks[:i], c.quirks[i+1:]...)
	return nil
}

// Move puts the quirk with the given id at index, clamped to the list.
func (c *Collection) Move(id string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrQuirkNotFound, id)
	}
	q := c.quirks[i]
	rest := append(append([]Quirk(nil), c.quirks[:i]...), c.quirks[i+1:]...)

	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}
	c.quirks = append(rest[:index], append([]Quirk{q}, rest[index:]...)...)
	return nil
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quirks)
}

// Quirks returns the quirks in application order.
func (c *Collection) Quirks() []Quirk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Quirk(nil), c.quirks...)
}

// Records returns the plain data of every quirk, for persisting.
func (c *Collection) Records() types.QuirkRecords {
	c.mu.RLock()
	defer c.mu.RUnlock()

	recs := make(types.QuirkRecords, len(c.quirks))
	for i, q := range c.quirks {
		recs[i] = q.Record()
	}
	return recs
}

// Groups returns the quirks grouped by name, groups sorted by name and
// quirks kept in application order.
func (c *Collection) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()

	index := make(map[string]int)
	var groups []Group
	for _, q := range c.quirks {
		i, ok := index[q.Group()]
		if !ok {
			i = len(groups)
			index[q.Group()] = i
			groups = append(groups, Group{Name: q.Group()})
		}
		groups[i].Quirks = append(groups[i].Quirks, q)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// Clone returns an independent collection with the same quirks.
func (c *Collection) Clone() *Collection {
	return NewCollection(c.Quirks()...)
}

// Hash changes whenever a quirk is added, removed, reordered or edited.
func (c *Collection) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	for _, q := range c.quirks {
		b.WriteString(q.Hash())
		b.WriteRune('\n')
	}
	return fastHash([]byte(b.String()))
}

// Apply runs the whole chain over every text segment of lexed and re-lexes
// the results. Any failure aborts the call and nothing is returned.
func (c *Collection) Apply(env *Env, lexed types.Segments) (out types.Segments, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = applyError("apply", "", fmt.Errorf("%w: %v", ErrFunctionPanic, r))
		}
	}()

	lexer := env.lexer()
	out = make(types.Segments, 0, len(lexed)+1)

	for i, seg := range lexed {
		if !lexchum.IsText(seg) {
			if i == 0 {
				s, err := c.applyPrefixes(env, " ")
				if err != nil {
					return nil, err
				}
				out = append(out, lexer.Lex(s)...)
			}
			out = append(out, seg)
			continue
		}

		s, err := c.applyText(env, seg.Literal(), i == 0, i == len(lexed)-1)
		if err != nil {
			return nil, err
		}
		out = append(out, lexer.Lex(s)...)
	}

	return lexchum.Normalize(out), nil
}

func (c *Collection) applyPrefixes(env *Env, s string) (string, error) {
	for _, q := range c.quirks {
		if q.Type() != types.QuirkPrefix {
			continue
		}
		var err error
		if s, err = q.Apply(env, s, true, false); err != nil {
			return "", applyError("apply", q.String(), err)
		}
	}
	return s, nil
}

func (c *Collection) applyText(env *Env, s string, first, last bool) (string, error) {
	for _, q := range c.quirks {
		if !q.Enabled() {
			continue
		}

		var err error
		if q.Exclude() {
			s, err = applyExcluding(env, q, s, first, last)
		} else {
			s, err = q.Apply(env, s, first, last)
		}
		if err != nil {
			return "", applyError("apply", q.String(), err)
		}
	}
	return s, nil
}

// excludeZones returns the sorted spans a quirk in exclude mode must leave
// alone. Overlaps are resolved with a single pass over adjacent pairs that
// drops the earlier span; the index keeps advancing after a drop, so chains
// of three or more overlapping spans can stay partly unresolved.
func excludeZones(l *lexchum.Lexer, s string) [][]int {
	zones := l.ExclusionZones(s)
	sort.SliceStable(zones, func(i, j int) bool { return zones[i][0] < zones[j][0] })

	passes := len(zones) - 1
	for n := 0; n < passes; n++ {
		if n+1 >= len(zones) {
			break
		}
		if zones[n][1] > zones[n+1][0] {
			zones = append(zones[:n], zones[n+1:]...)
		}
	}
	return zones
}

func span(s string, from, to int) string {
	if from >= to {
		return ""
	}
	return s[from:to]
}

func applyExcluding(env *Env, q Quirk, s string, first, last bool) (string, error) {
	zones := excludeZones(env.lexer(), s)
	if len(zones) == 0 {
		return q.Apply(env, s, first, last)
	}

	parts := make([]string, 0, len(zones)+1)
	parts = append(parts, span(s, 0, zones[0][0]))
	for k := 1; k < len(zones); k++ {
		parts = append(parts, span(s, zones[k-1][1], zones[k][0]))
	}
	parts = append(parts, s[zones[len(zones)-1][1]:])

	for k, part := range parts {
		pf, pl := first && k == 0, last && k == len(parts)-1
		switch q.Type() {
		case types.QuirkRegexp, types.QuirkRandom:
			pf, pl = first, last
		}

		var err error
		if parts[k], err = q.Apply(env, part, pf, pl); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	for k, z := range zones {
		b.WriteString(parts[k])
		b.WriteString(s[z[0]:z[1]])
	}
	b.WriteString(parts[len(parts)-1])
	return b.String(), nil
}
