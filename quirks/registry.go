package quirks

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const (
	templateExpiration = 30 * time.Minute
	templateCleanup    = time.Hour
)

// Transform is a named function callable from replacement templates,
// e.g. upper(\1).
type Transform func(string) string

// Loader supplies transform functions to a Functions registry.
type Loader interface {
	Name() string
	Load() (map[string]Transform, error)
}

type loaderFunc struct {
	name string
	fn   func() (map[string]Transform, error)
}

func (l loaderFunc) Name() string                        { return l.name }
func (l loaderFunc) Load() (map[string]Transform, error) { return l.fn() }

// LoaderFunc adapts a function to the Loader interface.
func LoaderFunc(name string, fn func() (map[string]Transform, error)) Loader {
	return loaderFunc{name, fn}
}

// Registry is an immutable snapshot of the available transform functions.
type Registry struct {
	funcs     map[string]Transform
	names     []string
	version   uint64
	callRe    *regexp.Regexp
	templates *cache.Cache
}

// NewRegistry builds a standalone snapshot from funcs.
func NewRegistry(funcs map[string]Transform) *Registry {
	return newRegistry(funcs, 0, cache.New(templateExpiration, templateCleanup))
}

func newRegistry(funcs map[string]Transform, version uint64, templates *cache.Cache) *Registry {
	r := &Registry{
		funcs:     make(map[string]Transform, len(funcs)),
		version:   version,
		templates: templates,
	}
	for name, fn := range funcs {
		r.funcs[name] = fn
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	if len(r.names) == 0 {
		r.callRe = regexp.MustCompile(`\\[0-9]+`)
		return r
	}

	// longest first so a name never shadows a longer one sharing its suffix
	byLen := append([]string(nil), r.names...)
	sort.SliceStable(byLen, func(i, j int) bool { return len(byLen[i]) > len(byLen[j]) })
	alts := make([]string, 0, len(byLen)+2)
	for _, name := range byLen {
		alts = append(alts, regexp.QuoteMeta(name)+`\(`)
	}
	alts = append(alts, `\)`, `\\[0-9]+`)
	r.callRe = regexp.MustCompile("(" + strings.Join(alts, "|") + ")")
	return r
}

// Lookup returns the transform registered as name.
func (r *Registry) Lookup(name string) (Transform, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// Version increases every time the owning Functions reloads.
func (r *Registry) Version() uint64 { return r.version }

// Template returns the parsed form of a replacement template.
func (r *Registry) Template(s string) *Template {
	key := fmt.Sprintf("%d\x00%s", r.version, s)
	if t, ok := r.templates.Get(key); ok {
		return t.(*Template)
	}
	t := r.parseTemplate(s)
	r.templates.Set(key, t, cache.DefaultExpiration)
	return t
}

// Functions holds the current Registry and rebuilds it from its loaders on
// Reload. Readers always see a complete snapshot.
type Functions struct {
	mu        sync.Mutex
	loaders   []Loader
	current   atomic.Pointer[Registry]
	templates *cache.Cache
	version   uint64
}

// NewFunctions loads every loader once. Loader errors are logged, not fatal.
func NewFunctions(loaders ...Loader) *Functions {
	f := &Functions{
		loaders:   loaders,
		templates: cache.New(templateExpiration, templateCleanup),
	}
	f.Reload()
	return f
}

// Current returns the snapshot in effect.
func (f *Functions) Current() *Registry { return f.current.Load() }

// Reload rebuilds the registry from all loaders and swaps it in. A name
// registered by an earlier loader is never overridden by a later one. The
// returned ListError holds loader failures, which are also logged.
func (f *Functions) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs ListError
	funcs := make(map[string]Transform)
	for _, l := range f.loaders {
		loaded, err := l.Load()
		if err != nil {
			log.WithError(err).WithField("loader", l.Name()).Warn("error loading quirk functions")
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
		}
		for name, fn := range loaded {
			if _, ok := funcs[name]; ok {
				log.WithField("loader", l.Name()).Debugf("quirk function %s() already registered", name)
				continue
			}
			funcs[name] = fn
		}
	}

	f.version++
	reg := newRegistry(funcs, f.version, f.templates)
	f.current.Store(reg)
	log.WithField("version", reg.Version()).Infof("registered quirk functions: %s", strings.Join(reg.Names(), "(), ")+"()")

	if len(errs) > 0 {
		return errs
	}
	return nil
}
