package lexchum

import (
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var rgbRe = regexp.MustCompile(`^\d+,\d+,\d+`)

// resolveColor turns a color spec into rgb. isRGB reports whether spec was
// written as an r,g,b triple. Anything unparsable is black.
func resolveColor(spec string) (rgb [3]uint8, isRGB bool) {
	spec = strings.TrimSpace(spec)

	if rgbRe.MatchString(spec) {
		parts := strings.Split(spec, ",")
		if len(parts) != 3 {
			return rgb, true
		}
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n > 255 {
				return rgb, true
			}
			v[i] = uint8(n)
		}
		return v, true
	}

	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return rgb, false
		}
		r, g, b := c.RGB255()
		return [3]uint8{r, g, b}, false
	}

	if named, ok := colornames.Map[strings.ToLower(spec)]; ok {
		c, _ := colorful.MakeColor(named)
		r, g, b := c.RGB255()
		return [3]uint8{r, g, b}, false
	}

	return rgb, false
}
