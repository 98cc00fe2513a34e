package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/writeas/slug"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

const profileExt = ".js"

var ErrProfilePathMissing = errors.New("error: profile path missing")

// ProfileFilename is the file name a handle's profile is stored under
func ProfileFilename(handle string) string {
	name := slug.Make(handle)
	if name == "" {
		name = "profile"
	}
	return name + profileExt
}

// Initials are the handle's first letter and its first capital, upper cased.
// A handle with no capitals gets a single letter.
func Initials(handle string) string {
	if handle == "" {
		return "XX"
	}
	first, _ := utf8.DecodeRuneInString(handle)
	caps := ""
	for _, r := range handle {
		if unicode.IsUpper(r) {
			caps = string(r)
			break
		}
	}
	return strings.ToUpper(string(first) + caps)
}

type profileFile struct {
	Handle string             `json:"handle"`
	Color  string             `json:"color"`
	Quirks types.QuirkRecords `json:"quirks"`
}

// Profile is a user's handle, text color and quirks. Keys it does not use
// are kept as read so saving never loses them.
type Profile struct {
	Handle string
	Color  string
	Quirks *quirks.Collection

	extra map[string]json.RawMessage
	path  string
	saved string
}

func NewProfile(handle, color string) *Profile {
	p := &Profile{
		Handle: handle,
		Color:  color,
		Quirks: quirks.NewCollection(),
	}
	p.saved = p.Quirks.Hash()
	return p
}

// LoadProfile reads the profile at path. Invalid quirks are logged and left
// out; the rest of the profile still loads.
func LoadProfile(path string) (*Profile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var extra map[string]json.RawMessage
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", path, err)
	}
	var pf profileFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", path, err)
	}
	for _, key := range []string{"handle", "color", "quirks"} {
		delete(extra, key)
	}

	coll, err := quirks.FromRecords(pf.Quirks)
	if err != nil {
		log.WithError(err).WithField("profile", path).Warn("error loading some quirks")
	}

	p := &Profile{
		Handle: pf.Handle,
		Color:  pf.Color,
		Quirks: coll,
		extra:  extra,
		path:   path,
	}
	p.saved = coll.Hash()
	return p, nil
}

// LoadOrCreateProfile loads the profile at path or returns a new one for
// handle if the file does not exist yet.
func LoadOrCreateProfile(path, handle, color string) (*Profile, error) {
	p, err := LoadProfile(path)
	if os.IsNotExist(err) {
		p = NewProfile(handle, color)
		p.path = path
		return p, nil
	}
	return p, err
}

// ColorCmd is the profile color as r,g,b for <c=...> tags
func (p *Profile) ColorCmd() string {
	if p.Color == "" {
		return "0,0,0"
	}
	return lexchum.NewColor(p.Color).RGB()
}

func (p *Profile) Initials() string { return Initials(p.Handle) }

// Dirty reports whether the quirks changed since the profile was loaded or
// saved.
func (p *Profile) Dirty() bool {
	return p.Quirks.Hash() != p.saved
}

func (p *Profile) Bytes() ([]byte, error) {
	out := make(map[string]interface{}, len(p.extra)+3)
	for k, v := range p.extra {
		out[k] = v
	}
	out["handle"] = p.Handle
	out["color"] = p.Color
	out["quirks"] = p.Quirks.Records()

	return json.Marshal(out)
}

// Save writes the profile to path, or to where it was loaded from.
func (p *Profile) Save(path string) error {
	if path == "" {
		path = p.path
	}
	if path == "" {
		return ErrProfilePathMissing
	}

	data, err := p.Bytes()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, data, 0600); err != nil {
		return err
	}

	p.path = path
	p.saved = p.Quirks.Hash()
	log.WithField("profile", path).Debug("saved profile")
	return nil
}
