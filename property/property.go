// Package property holds the structured deal record a flyer is built from.
//
// Fields are kept as the strings the wholesaler typed into the form: a
// price may read "$245,000" or "245k", and a blank field is simply "".
package property

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Property is one wholesale deal.
type Property struct {
	Address    Address      `json:"address" yaml:"address"`
	ListingURL string       `json:"listingUrl,omitempty" yaml:"listingUrl,omitempty"`
	Photos     []string     `json:"photos,omitempty" yaml:"photos,omitempty"`
	Financials Financials   `json:"financials" yaml:"financials"`
	Details    Details      `json:"details" yaml:"details"`
	Comps      Comps        `json:"comps" yaml:"comps"`
	Occupancy  Occupancy    `json:"occupancy" yaml:"occupancy"`
	Access     Access       `json:"access" yaml:"access"`
	EMD        EMDClosing   `json:"emdClosing" yaml:"emdClosing"`
	Exit       ExitStrategy `json:"exitStrategy" yaml:"exitStrategy"`
	Contact    Contact      `json:"contact" yaml:"contact"`
}

// Address locates the property.
type Address struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city,omitempty" yaml:"city,omitempty"`
	State  string `json:"state,omitempty" yaml:"state,omitempty"`
	Zip    string `json:"zip,omitempty" yaml:"zip,omitempty"`
}

// String formats the address on one line, skipping blank parts.
func (a Address) String() string {
	var parts []string
	for _, s := range []string{a.Street, a.City} {
		if !Blank(s) {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	tail := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip))
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

type Financials struct {
	PurchasePrice string `json:"purchasePrice,omitempty" yaml:"purchasePrice,omitempty"`
	ARV           string `json:"arv,omitempty" yaml:"arv,omitempty"`
	RehabEstimate string `json:"rehabEstimate,omitempty" yaml:"rehabEstimate,omitempty"`
	AssignmentFee string `json:"assignmentFee,omitempty" yaml:"assignmentFee,omitempty"`
	Notes         string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type Details struct {
	PropertyType string `json:"propertyType,omitempty" yaml:"propertyType,omitempty"`
	Bedrooms     string `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms    string `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	SquareFeet   string `json:"squareFeet,omitempty" yaml:"squareFeet,omitempty"`
	LotSize      string `json:"lotSize,omitempty" yaml:"lotSize,omitempty"`
	YearBuilt    string `json:"yearBuilt,omitempty" yaml:"yearBuilt,omitempty"`
	// Description is markdown.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Comps lists comparable properties by category. Entries are free text,
// usually a URL to the comp.
type Comps struct {
	Pending         []string `json:"pending,omitempty" yaml:"pending,omitempty"`
	Sold            []string `json:"sold,omitempty" yaml:"sold,omitempty"`
	Rental          []string `json:"rental,omitempty" yaml:"rental,omitempty"`
	NewConstruction []string `json:"newConstruction,omitempty" yaml:"newConstruction,omitempty"`
	AsIs            []string `json:"asIs,omitempty" yaml:"asIs,omitempty"`
}

// CompCategory is one labelled list of comps.
type CompCategory struct {
	Label   string
	Entries []string
}

// Categories returns the five comp lists in display order.
func (c Comps) Categories() []CompCategory {
	return []CompCategory{
		{"Pending", c.Pending},
		{"Sold", c.Sold},
		{"Rental", c.Rental},
		{"New Construction", c.NewConstruction},
		{"As-Is", c.AsIs},
	}
}

// AllBlank reports whether every entry of every category is blank.
func (c Comps) AllBlank() bool {
	for _, cat := range c.Categories() {
		for _, e := range cat.Entries {
			if !Blank(e) {
				return false
			}
		}
	}
	return true
}

type Occupancy struct {
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	LeaseTerms  string `json:"leaseTerms,omitempty" yaml:"leaseTerms,omitempty"`
	MonthlyRent string `json:"monthlyRent,omitempty" yaml:"monthlyRent,omitempty"`
}

type Access struct {
	Instructions  string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Lockbox       string `json:"lockbox,omitempty" yaml:"lockbox,omitempty"`
	ShowingWindow string `json:"showingWindow,omitempty" yaml:"showingWindow,omitempty"`
}

type EMDClosing struct {
	Amount       string `json:"amount,omitempty" yaml:"amount,omitempty"`
	ClosingDate  string `json:"closingDate,omitempty" yaml:"closingDate,omitempty"`
	TitleCompany string `json:"titleCompany,omitempty" yaml:"titleCompany,omitempty"`
}

type ExitStrategy struct {
	// Strategy is a markdown narrative.
	Strategy     string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	RentalBackup string `json:"rentalBackup,omitempty" yaml:"rentalBackup,omitempty"`
}

type Contact struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Blank reports whether s holds nothing but whitespace.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }

// Format selects the encoding used by Decode.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Decode reads a property record in the given format.
func Decode(r io.Reader, f Format) (*Property, error) {
	var p Property
	switch f {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("property: decoding yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("property: decoding json: %w", err)
		}
	}
	return &p, nil
}

// Load reads a property record from a JSON or YAML file.
func Load(path string) (*Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("property: opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatOf(path))
}
