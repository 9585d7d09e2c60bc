package fragment

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// Decode reads a JSON fragment from r and validates it.
func Decode(r io.Reader) (*Fragment, error) {
	var f Fragment
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("fragment: decoding: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode writes f as indented JSON.
func Encode(w io.Writer, f *Fragment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// ParseColor parses "#rgb", "#rrggbb" and "transparent". The empty string
// yields ok == false.
func ParseColor(s string) (c color.RGBA, ok bool, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return color.RGBA{}, false, nil
	case s == "transparent":
		return color.RGBA{}, true, nil
	case !strings.HasPrefix(s, "#"):
		return color.RGBA{}, false, fmt.Errorf("fragment: unsupported colour %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false, fmt.Errorf("fragment: unsupported colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false, fmt.Errorf("fragment: unsupported colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true, nil
}
