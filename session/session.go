package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

var (
	ErrUnknownFlavor = errors.New("error: unknown flavor")
	ErrEmptySession  = errors.New("error: empty session")
)

// Flavor selects how outgoing messages are post-processed. The names follow
// the window each one belongs to.
type Flavor string

const (
	// FlavorConvo is a one to one conversation.
	FlavorConvo Flavor = "convo"
	// FlavorMemo is a memo (channel) with timeline initials.
	FlavorMemo Flavor = "memos"
	// FlavorMenus is the quirk tester: nothing is sent, quirks always apply.
	FlavorMenus Flavor = "menus"
)

func ParseFlavor(s string) (Flavor, error) {
	switch f := Flavor(strings.ToLower(strings.TrimSpace(s))); f {
	case FlavorConvo, FlavorMemo, FlavorMenus:
		return f, nil
	case "memo":
		return FlavorMemo, nil
	case "menu", "tester":
		return FlavorMenus, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, s)
}

// MemoTime is the user's position on a memo's timeline.
type MemoTime struct {
	Offset time.Duration `json:"offset"`
	Number int           `json:"number"`
}

// PCF is the tense letter shown before memo initials: Past, Current or
// Future.
func (t MemoTime) PCF() string {
	switch {
	case t.Offset > 0:
		return "F"
	case t.Offset < 0:
		return "P"
	}
	return "C"
}

// Suffix is the number shown after memo initials, empty for the first user
// at that time.
func (t MemoTime) Suffix() string {
	if t.Number == 0 {
		return ""
	}
	return fmt.Sprint(t.Number)
}

// Session is the send state of one conversation window.
type Session struct {
	ID          string    `json:"id"`
	Target      string    `json:"target"`
	Flavor      Flavor    `json:"flavor"`
	OOC         bool      `json:"ooc"`
	ApplyQuirks bool      `json:"applyquirks"`
	Time        MemoTime  `json:"time"`
	History     *History  `json:"history"`
	CreatedAt   time.Time `json:"created"`
}

func NewSession(target string, flavor Flavor) *Session {
	return &Session{
		ID:          shortuuid.New(),
		Target:      target,
		Flavor:      flavor,
		ApplyQuirks: true,
		History:     NewHistory(),
		CreatedAt:   time.Now(),
	}
}

func LoadSession(data []byte) (sess *Session, err error) {
	if err = json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrEmptySession
	}

	if sess.Flavor == "" {
		sess.Flavor = FlavorConvo
	}
	if sess.Flavor, err = ParseFlavor(string(sess.Flavor)); err != nil {
		return nil, err
	}

	if sess.History == nil {
		sess.History = NewHistory()
	}

	return
}

func (sess *Session) Bytes() ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	return data, nil
}
