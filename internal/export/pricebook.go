// Package export renders the catalog as a price book workbook suitable for
// printing or handing to a wholesale account.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/finemetal/bench/internal/pricing"
)

const (
	materialsSheet = "Materials"
	processesSheet = "Processes"
)

// BuildPricebook renders the full catalog into a two-sheet workbook: material
// costs with their marked-up counter prices, and process retail/wholesale
// prices with one row per metal variant. Records that cannot be priced get a
// note instead of failing the whole export.
func BuildPricebook(cat pricing.Catalog, s pricing.Settings) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeMaterialsSheet(f, cat.Materials, s); err != nil {
		return nil, err
	}
	if err := writeProcessesSheet(f, cat.Processes, s); err != nil {
		return nil, err
	}

	// NewFile starts with a default sheet; the renamed first sheet stays
	// active.
	index, err := f.GetSheetIndex(materialsSheet)
	if err != nil {
		return nil, fmt.Errorf("locate materials sheet: %w", err)
	}
	f.SetActiveSheet(index)

	return f, nil
}

func writeMaterialsSheet(f *excelize.File, materials []pricing.Material, s pricing.Settings) error {
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, materialsSheet); err != nil {
		return fmt.Errorf("rename materials sheet: %w", err)
	}

	if err := writeRow(f, materialsSheet, 1, "Material", "Base Cost", "Counter Price", "Notes"); err != nil {
		return err
	}

	row := 2
	for i := range materials {
		m := &materials[i]

		if m.MetalDependent {
			note := fmt.Sprintf("priced per metal (%d variants)", len(m.Variants))
			if err := writeRow(f, materialsSheet, row, m.Name, "", "", note); err != nil {
				return err
			}
			row++
			continue
		}

		raw, err := pricing.MaterialRawCost(m)
		if err != nil {
			if err := writeRow(f, materialsSheet, row, m.Name, "", "", "no cost on record"); err != nil {
				return err
			}
			row++
			continue
		}

		marked := pricing.MarkupMaterial(raw, s)
		if err := writeRow(f, materialsSheet, row, m.Name, pricing.RoundCents(raw), marked, ""); err != nil {
			return err
		}
		row++
	}

	return nil
}

func writeProcessesSheet(f *excelize.File, processes []pricing.Process, s pricing.Settings) error {
	if _, err := f.NewSheet(processesSheet); err != nil {
		return fmt.Errorf("create processes sheet: %w", err)
	}

	if err := writeRow(f, processesSheet, 1, "Process", "Metal", "Labor", "Retail", "Wholesale", "Notes"); err != nil {
		return err
	}

	row := 2
	for i := range processes {
		p := &processes[i]

		cost, err := pricing.CalculateProcessCost(p, s)
		if err != nil {
			if err := writeRow(f, processesSheet, row, p.Name, "", "", "", "", "not priceable: "+err.Error()); err != nil {
				return err
			}
			row++
			continue
		}

		if !cost.MetalDependent {
			if err := writeRow(f, processesSheet, row, p.Name, "", cost.LaborCost, cost.RetailPrice, cost.WholesalePrice, ""); err != nil {
				return err
			}
			row++
			continue
		}

		// Labor-only summary first, then one row per metal variant.
		if err := writeRow(f, processesSheet, row, p.Name, "any", cost.LaborCost, cost.RetailPrice, cost.WholesalePrice, "labor only"); err != nil {
			return err
		}
		row++
		for _, variant := range sortedVariants(cost.Variants) {
			note := ""
			if len(variant.MissingMaterials) > 0 {
				note = "missing vendor pricing"
			}
			if err := writeRow(f, processesSheet, row, p.Name, variant.Label, variant.LaborCost, variant.RetailPrice, variant.WholesalePrice, note); err != nil {
				return err
			}
			row++
		}
	}

	return nil
}

func sortedVariants(variants map[string]pricing.VariantCost) []pricing.VariantCost {
	keys := make([]string, 0, len(variants))
	for key := range variants {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]pricing.VariantCost, 0, len(keys))
	for _, key := range keys {
		out = append(out, variants[key])
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, value := range values {
		if value == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell reference %s row %d: %w", sheet, row, err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
