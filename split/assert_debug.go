//go:build chumdebug

package split

import (
	"fmt"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

// assertBalanced panics when a chunk closes a color it never opened or
// leaves one open.
func assertBalanced(chunk types.Segments) {
	depth := 0
	for i, seg := range chunk {
		switch seg.(type) {
		case *lexchum.Color:
			depth++
		case *lexchum.ColorEnd:
			depth--
		}
		if depth < 0 {
			panic(fmt.Sprintf("split: unmatched color close at %d in %q", i, chunk.Literal()))
		}
	}
	if depth != 0 {
		panic(fmt.Sprintf("split: %d colors left open in %q", depth, chunk.Literal()))
	}
}
