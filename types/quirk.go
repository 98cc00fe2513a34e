package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// DefaultQuirkGroup is assigned to records that don't name a group.
	DefaultQuirkGroup = "Miscellaneous"
)

var ErrUnknownQuirkType = errors.New("error: unknown quirk type")

// QuirkType names a quirk variant as stored in profiles.
type QuirkType string

// QuirkType values
const (
	QuirkPrefix   QuirkType = "prefix"
	QuirkSuffix   QuirkType = "suffix"
	QuirkReplace  QuirkType = "replace"
	QuirkRegexp   QuirkType = "regexp"
	QuirkRandom   QuirkType = "random"
	QuirkSpelling QuirkType = "spelling"
)

func (t QuirkType) Valid() bool {
	switch t {
	case QuirkPrefix, QuirkSuffix, QuirkReplace, QuirkRegexp, QuirkRandom, QuirkSpelling:
		return true
	}
	return false
}

// QuirkRecord is the plain data form of a quirk, as persisted by the profile
// layer. Only the fields relevant to Type are used.
type QuirkRecord struct {
	ID    string    `json:"id,omitempty" yaml:"id,omitempty"`
	Type  QuirkType `json:"type" yaml:"type"`
	On    *bool     `json:"on,omitempty" yaml:"on,omitempty"`
	Group string    `json:"group,omitempty" yaml:"group,omitempty"`

	// Prefix / Suffix
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Replace / Regexp / Random
	From       string   `json:"from,omitempty" yaml:"from,omitempty"`
	To         string   `json:"to,omitempty" yaml:"to,omitempty"`
	RandomList []string `json:"randomlist,omitempty" yaml:"randomlist,omitempty"`

	// Spelling
	Percentage int `json:"percentage,omitempty" yaml:"percentage,omitempty"`

	// Exclude links, smilies, @handles and #memos from the quirk.
	Exclude bool `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Enabled reports whether the quirk is switched on. Records default to on.
func (r QuirkRecord) Enabled() bool { return r.On == nil || *r.On }

// GroupName returns the UI group, falling back to DefaultQuirkGroup.
func (r QuirkRecord) GroupName() string {
	if r.Group == "" {
		return DefaultQuirkGroup
	}
	return r.Group
}

// UnmarshalJSON accepts the legacy "checkstate" field (2 == exclude) written
// by older profiles.
func (r *QuirkRecord) UnmarshalJSON(data []byte) error {
	type record QuirkRecord
	aux := struct {
		record
		CheckState json.RawMessage `json:"checkstate,omitempty"`
	}{}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = QuirkRecord(aux.record)

	if len(aux.CheckState) > 0 {
		var state interface{}
		if err := json.Unmarshal(aux.CheckState, &state); err != nil {
			return fmt.Errorf("error decoding checkstate: %w", err)
		}
		switch v := state.(type) {
		case float64:
			r.Exclude = r.Exclude || v == 2
		case string:
			r.Exclude = r.Exclude || v == "2"
		}
	}

	return nil
}

// QuirkRecords ...
type QuirkRecords []QuirkRecord
