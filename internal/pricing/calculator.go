package pricing

import (
	"strings"

	"printshop-backend/internal/domain"
)

// Spec is a customer's in-progress print configuration. It only exists as
// calculator input; orders persist the resulting line items instead.
type Spec struct {
	PaperID     string
	FinishingID string
	Size        domain.SizeMode
	Color       domain.ColorMode
	Pages       int
	Copies      int
}

type Breakdown struct {
	BasePerSheet      int64 `json:"basePerSheet"`
	SizeSurcharge     int64 `json:"sizeSurcharge"`
	ColorSurcharge    int64 `json:"colorSurcharge"`
	FinishingPerCopy  int64 `json:"finishingPerCopy"`
	TotalSheets       int   `json:"totalSheets"`
	PrintingSubtotal  int64 `json:"printingSubtotal"`
	FinishingSubtotal int64 `json:"finishingSubtotal"`
	GrandTotal        int64 `json:"grandTotal"`
}

// Compute quotes a spec against a catalog snapshot. It is pure and never
// fails: unresolved options price as zero so a quote is always producible.
// Quantities below one are clamped to one.
func Compute(catalog []domain.ServiceOption, addons domain.AddonMap, spec Spec) Breakdown {
	var b Breakdown

	// An unset mode means no surcharge.
	if spec.Size == "" {
		spec.Size = domain.SizeStandard
	}
	if spec.Color == "" {
		spec.Color = domain.ColorMonochrome
	}

	if paper, ok := findActive(catalog, spec.PaperID); ok && paper.Category == domain.CategoryPaper {
		b.BasePerSheet = paper.UnitPrice
	}
	if spec.Size != domain.SizeStandard {
		if opt, ok := resolveSizeAddon(catalog, addons, spec.Size); ok {
			b.SizeSurcharge = opt.UnitPrice
		}
	}
	if spec.Color != domain.ColorMonochrome {
		if opt, ok := resolveColorAddon(catalog, addons, spec.Color); ok {
			b.ColorSurcharge = opt.UnitPrice
		}
	}
	if spec.FinishingID != "" {
		if fin, ok := findActive(catalog, spec.FinishingID); ok && fin.Category == domain.CategoryFinishing {
			b.FinishingPerCopy = fin.UnitPrice
		}
	}

	pages := clampMin1(spec.Pages)
	copies := clampMin1(spec.Copies)
	b.TotalSheets = pages * copies
	b.PrintingSubtotal = (b.BasePerSheet + b.SizeSurcharge + b.ColorSurcharge) * int64(b.TotalSheets)
	// Finishing is charged per output copy, not per sheet.
	b.FinishingSubtotal = b.FinishingPerCopy * int64(copies)
	b.GrandTotal = b.PrintingSubtotal + b.FinishingSubtotal
	return b
}

// LineItems builds the order line items an accepted quote snapshots: paper
// and addons at sheet quantity, finishing at copy quantity.
func LineItems(catalog []domain.ServiceOption, addons domain.AddonMap, spec Spec) []domain.OrderLineItem {
	if spec.Size == "" {
		spec.Size = domain.SizeStandard
	}
	if spec.Color == "" {
		spec.Color = domain.ColorMonochrome
	}
	b := Compute(catalog, addons, spec)
	copies := clampMin1(spec.Copies)

	var items []domain.OrderLineItem
	if paper, ok := findActive(catalog, spec.PaperID); ok && paper.Category == domain.CategoryPaper {
		items = append(items, lineItem(paper, b.TotalSheets))
	}
	if spec.FinishingID != "" {
		if fin, ok := findActive(catalog, spec.FinishingID); ok && fin.Category == domain.CategoryFinishing {
			items = append(items, lineItem(fin, copies))
		}
	}
	if spec.Color != domain.ColorMonochrome {
		if opt, ok := resolveColorAddon(catalog, addons, spec.Color); ok {
			items = append(items, lineItem(opt, b.TotalSheets))
		}
	}
	if spec.Size != domain.SizeStandard {
		if opt, ok := resolveSizeAddon(catalog, addons, spec.Size); ok {
			items = append(items, lineItem(opt, b.TotalSheets))
		}
	}
	return items
}

func lineItem(opt domain.ServiceOption, qty int) domain.OrderLineItem {
	return domain.OrderLineItem{
		ServiceID: opt.ID,
		Name:      opt.Name,
		Quantity:  qty,
		UnitPrice: opt.UnitPrice,
		LineTotal: opt.UnitPrice * int64(qty),
	}
}

func findActive(catalog []domain.ServiceOption, id string) (domain.ServiceOption, bool) {
	if id == "" {
		return domain.ServiceOption{}, false
	}
	for _, opt := range catalog {
		if opt.ID == id && opt.Active {
			return opt, true
		}
	}
	return domain.ServiceOption{}, false
}

// resolveSizeAddon prefers the explicit addon map; without an entry it falls
// back to the inherited convention of matching the mode name against
// size-addon options.
func resolveSizeAddon(catalog []domain.ServiceOption, addons domain.AddonMap, mode domain.SizeMode) (domain.ServiceOption, bool) {
	if id, ok := addons.Size[mode]; ok {
		return findActive(catalog, id)
	}
	needle := strings.ToLower(string(mode))
	for _, opt := range catalog {
		if opt.Active && opt.Category == domain.CategorySizeAddon && strings.Contains(strings.ToLower(opt.Name), needle) {
			return opt, true
		}
	}
	return domain.ServiceOption{}, false
}

func resolveColorAddon(catalog []domain.ServiceOption, addons domain.AddonMap, mode domain.ColorMode) (domain.ServiceOption, bool) {
	if id, ok := addons.Color[mode]; ok {
		return findActive(catalog, id)
	}
	for _, opt := range catalog {
		if opt.Active && opt.Category == domain.CategoryColorAddon {
			return opt, true
		}
	}
	return domain.ServiceOption{}, false
}

func clampMin1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
