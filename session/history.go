package session

import (
	"encoding/json"
	"sync"
)

// History is the list of lines typed into a window, browsed with the up and
// down keys. Browsing away from an unsent line keeps it so coming back to
// the end restores it.
type History struct {
	mu      sync.Mutex
	entries []string
	current int
	saved   *string
}

func NewHistory() *History {
	return &History{}
}

// Add records a sent line, unless it repeats the previous one, and moves
// the cursor back to the end.
func (h *History) Add(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n == 0 || h.entries[n-1] != text {
		h.entries = append(h.entries, text)
	}
	h.reset()
}

func (h *History) reset() {
	h.current = len(h.entries)
	h.saved = nil
}

// Prev steps to the previous (older) line. current is what the input box
// holds now; it is kept when leaving the end of the list. ok is false when
// there is nothing older.
func (h *History) Prev(current string) (text string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == 0 {
		return "", false
	}
	if h.current == len(h.entries) {
		h.saved = &current
	}
	h.current--
	return h.entries[h.current], true
}

// Next steps to the next (newer) line. Past the newest entry it returns the
// line that was being typed, if any.
func (h *History) Next() (text string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current++
	if h.current >= len(h.entries) {
		h.current = len(h.entries)
		if h.saved == nil {
			return "", false
		}
		return *h.saved, true
	}
	return h.entries[h.current], true
}

// Entries returns a copy of the recorded lines, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Entries())
}

func (h *History) UnmarshalJSON(data []byte) error {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = entries
	h.reset()
	return nil
}
