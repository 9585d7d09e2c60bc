// Package section defines the closed set of flyer sections and the unit of
// pagination handed to the generator.
package section

import (
	"fmt"

	"github.com/lvillar/flyerpdf/fragment"
)

// Key identifies a flyer section. The set is closed: code that dispatches on
// a Key switches over every constant below.
type Key int

const (
	Property Key = iota
	Financial
	PropertyDetails
	Comps
	Occupancy
	Access
	EMDClosing
	ExitStrategy
	Contact

	numKeys
)

var names = [numKeys]string{
	Property:        "property",
	Financial:       "financial",
	PropertyDetails: "propertyDetails",
	Comps:           "comps",
	Occupancy:       "occupancy",
	Access:          "access",
	EMDClosing:      "emdClosing",
	ExitStrategy:    "exitStrategy",
	Contact:         "contact",
}

var titles = [numKeys]string{
	Property:        "Property",
	Financial:       "Financials",
	PropertyDetails: "Property Details",
	Comps:           "Comparables",
	Occupancy:       "Occupancy",
	Access:          "Access",
	EMDClosing:      "EMD & Closing",
	ExitStrategy:    "Exit Strategy",
	Contact:         "Contact",
}

// Keys returns every key in the canonical flyer order.
func Keys() []Key {
	out := make([]Key, numKeys)
	for i := range out {
		out[i] = Key(i)
	}
	return out
}

// Valid reports whether k is one of the defined keys.
func (k Key) Valid() bool { return k >= 0 && k < numKeys }

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("section.Key(%d)", int(k))
	}
	return names[k]
}

// Title is the human heading printed above the section.
func (k Key) Title() string {
	if !k.Valid() {
		return ""
	}
	return titles[k]
}

// ParseKey maps the wire name of a section to its Key.
func ParseKey(s string) (Key, error) {
	for i, n := range names {
		if n == s {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("section: unknown key %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("section: invalid key %d", int(k))
	}
	return []byte(names[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(b []byte) error {
	v, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Section is one atomic block of the flyer: a key plus its rendered content.
// Sections are processed in the order the caller supplies them.
type Section struct {
	Key      Key                `json:"key"`
	Fragment *fragment.Fragment `json:"fragment"`
}
