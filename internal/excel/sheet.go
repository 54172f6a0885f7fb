package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fabricstore/internal/domain"
)

// firstSheetRows returns every row of the workbook's first sheet.
func firstSheetRows(reader io.Reader, opts ...excelize.Options) ([][]string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0], opts...)
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}

func mapColumns(header []string, aliases map[string]string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := aliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func requireColumns(colMap map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := colMap[name]; !ok {
			return fmt.Errorf("missing required column: %s", name)
		}
	}
	return nil
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// optionalCell reads a column that may be absent from the sheet.
func optionalCell(row []string, colMap map[string]int, name string) string {
	idx, ok := colMap[name]
	if !ok {
		return ""
	}
	return readCell(row, idx)
}

// parseAmount accepts "12.5", "12,5", "1,250.75" and an optional "Rp" prefix.
func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	if len(value) >= 2 && strings.EqualFold(value[:2], "rp") {
		value = strings.TrimSpace(value[2:])
	}
	parsed, err := domain.ParseDecimal(strings.ReplaceAll(value, " ", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	return parsed, nil
}

func parseNonNegative(raw string) (float64, error) {
	parsed, err := parseAmount(raw)
	if err != nil {
		return 0, err
	}
	if parsed.IsNegative() {
		return 0, fmt.Errorf("must not be negative")
	}
	return parsed.InexactFloat64(), nil
}
