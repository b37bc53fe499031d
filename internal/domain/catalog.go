package domain

type OptionCategory string

const (
	CategoryPaper      OptionCategory = "paper"
	CategoryFinishing  OptionCategory = "finishing"
	CategorySizeAddon  OptionCategory = "size-addon"
	CategoryColorAddon OptionCategory = "color-addon"
)

// ServiceOption is a priced, categorized line item offered by the shop.
// The calculator only ever reads a snapshot; staff pricing management
// creates and deactivates options.
type ServiceOption struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  OptionCategory `json:"category"`
	UnitPrice int64          `json:"unitPrice"`
	Active    bool           `json:"active"`
}

type SizeMode string

const (
	SizeStandard  SizeMode = "standard"
	SizeAlternate SizeMode = "alternate-standard"
	SizeOversized SizeMode = "oversized"
)

type ColorMode string

const (
	ColorMonochrome ColorMode = "monochrome"
	ColorFull       ColorMode = "color"
)

// AddonMap is the explicit mapping from a size/color mode to the option
// that surcharges it. Configured alongside the catalog; modes without an
// entry fall back to category matching.
type AddonMap struct {
	Size  map[SizeMode]string  `json:"size"`
	Color map[ColorMode]string `json:"color"`
}
