package excel

import (
	"fmt"
	"io"

	"fabricstore/internal/domain"
)

var fabricHeaderAliases = map[string]string{
	"fabric_name":  "fabric_name",
	"fabric name":  "fabric_name",
	"fabric":       "fabric_name",
	"name":         "fabric_name",
	"nama kain":    "fabric_name",
	"kain":         "fabric_name",
	"color":        "color",
	"colour":       "color",
	"warna":        "color",
	"price per kg": "price_per_kg",
	"price/kg":     "price_per_kg",
	"price":        "price_per_kg",
	"harga per kg": "price_per_kg",
	"harga/kg":     "price_per_kg",
	"harga":        "price_per_kg",
	"stock kg":     "stock_kg",
	"stock":        "stock_kg",
	"stok kg":      "stock_kg",
	"stok":         "stock_kg",
	"alarm kg":     "alarm_kg",
	"alarm":        "alarm_kg",
	"batas stok":   "alarm_kg",
}

// ParseFabricRows reads a stock sheet. Rows with an empty fabric name are
// skipped; a missing stock cell means zero.
func ParseFabricRows(reader io.Reader) ([]domain.FabricImportRow, error) {
	rows, err := firstSheetRows(reader)
	if err != nil {
		return nil, err
	}

	colMap := mapColumns(rows[0], fabricHeaderAliases)
	if err := requireColumns(colMap, "fabric_name", "price_per_kg"); err != nil {
		return nil, err
	}

	result := make([]domain.FabricImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := readCell(cells, colMap["fabric_name"])
		if name == "" {
			continue
		}

		price, err := parseNonNegative(readCell(cells, colMap["price_per_kg"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid price_per_kg: %w", index+1, err)
		}

		stock := 0.0
		if raw := optionalCell(cells, colMap, "stock_kg"); raw != "" {
			stock, err = parseNonNegative(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid stock_kg: %w", index+1, err)
			}
		}

		var alarm *float64
		if raw := optionalCell(cells, colMap, "alarm_kg"); raw != "" {
			value, err := parseNonNegative(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid alarm_kg: %w", index+1, err)
			}
			alarm = &value
		}

		var color *string
		if value := optionalCell(cells, colMap, "color"); value != "" {
			color = &value
		}

		result = append(result, domain.FabricImportRow{
			FabricName: name,
			Color:      color,
			PricePerKg: price,
			StockKg:    stock,
			AlarmKg:    alarm,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}
