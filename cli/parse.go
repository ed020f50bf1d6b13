package cli

import (
	"fmt"
	"strings"

	"github.com/user-none/colecohal/vdp"
)

var modeNames = map[string]vdp.Mode{
	"g1":          vdp.GraphicsI,
	"graphics1":   vdp.GraphicsI,
	"g2":          vdp.GraphicsII,
	"graphics2":   vdp.GraphicsII,
	"bitmap":      vdp.Bitmap,
	"multicolor":  vdp.Bitmap,
	"multicolour": vdp.Bitmap,
	"text":        vdp.Text,
}

// ParseMode converts a display mode name as given on the command line
func ParseMode(s string) (vdp.Mode, error) {
	m, ok := modeNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown mode %q (use g1, g2, bitmap or text)", s)
	}
	return m, nil
}

// ParseColor converts a palette index 0 to 15
func ParseColor(n int) (vdp.Color, error) {
	if n < 0 || n > 15 {
		return 0, fmt.Errorf("color %d out of range 0-15", n)
	}
	return vdp.Color(n), nil
}
