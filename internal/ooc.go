package internal

import "strings"

var oocBraces = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// IsOOC reports whether msg is an out of character line: it opens with a
// doubled brace and the last doubled closing brace in it matches, as in
// "((like this))". Text after the closing pair is allowed.
func IsOOC(msg string) bool {
	if len(msg) < 4 || msg[0] != msg[1] {
		return false
	}
	closer, ok := oocBraces[msg[0]]
	if !ok {
		return false
	}

	for i := len(msg) - 2; i >= 2; i-- {
		if msg[i] == msg[i+1] && strings.IndexByte(")]}", msg[i]) >= 0 {
			return msg[i] == closer
		}
	}
	return false
}
