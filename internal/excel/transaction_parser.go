package excel

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"fabricstore/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var transactionHeaderAliases = map[string]string{
	"transaction id": "transaction_id",
	"id":             "transaction_id",
	"id transaksi":   "transaction_id",
	"date":           "date",
	"created at":     "date",
	"tanggal":        "date",
	"customer":       "customer_name",
	"customer name":  "customer_name",
	"pelanggan":      "customer_name",
	"nama pelanggan": "customer_name",
	"fabric":         "fabric_name",
	"fabric name":    "fabric_name",
	"kain":           "fabric_name",
	"nama kain":      "fabric_name",
	"weight":         "weight",
	"weight kg":      "weight",
	"berat":          "weight",
	"berat kg":       "weight",
	"price per kg":   "price_per_kg",
	"price/kg":       "price_per_kg",
	"harga per kg":   "price_per_kg",
	"harga/kg":       "price_per_kg",
	"total":          "total_price",
	"total price":    "total_price",
	"subtotal":       "total_price",
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
}

// ParseTransactionRows reads a sales sheet with one line item per row.
// Rows sharing a transaction id become one transaction. Rows without an id
// join the previous row when it also had no id and shows the same date and
// customer; otherwise they start a new transaction with a fresh id.
// Dates without a zone are read in loc.
func ParseTransactionRows(reader io.Reader, loc *time.Location) ([]domain.Transaction, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows, err := firstSheetRows(reader, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	colMap := mapColumns(rows[0], transactionHeaderAliases)
	if err := requireColumns(colMap, "date", "customer_name", "fabric_name", "weight", "price_per_kg"); err != nil {
		return nil, err
	}

	var (
		result   []domain.Transaction
		totals   []decimal.Decimal
		lastKey  string
		lastBase string
	)
	byID := make(map[string]int)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		fabric := readCell(cells, colMap["fabric_name"])
		customer := readCell(cells, colMap["customer_name"])
		if fabric == "" && customer == "" {
			continue
		}
		if fabric == "" {
			return nil, fmt.Errorf("row %d missing fabric", index+1)
		}
		if customer == "" {
			return nil, fmt.Errorf("row %d missing customer", index+1)
		}

		createdAt, err := parseDate(readCell(cells, colMap["date"]), loc)
		if err != nil {
			return nil, fmt.Errorf("row %d invalid date: %w", index+1, err)
		}
		item, err := parseLineItem(cells, colMap, fabric)
		if err != nil {
			return nil, fmt.Errorf("row %d %w", index+1, err)
		}

		id := optionalCell(cells, colMap, "transaction_id")
		base := createdAt.Format(time.RFC3339Nano) + "|" + customer
		var key string
		switch {
		case id != "":
			parsed, err := uuid.Parse(id)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid transaction_id: %w", index+1, err)
			}
			key = parsed.String()
		case lastKey != "" && base == lastBase:
			key = lastKey
		default:
			key = "row:" + strconv.Itoa(index)
		}

		pos, ok := byID[key]
		if !ok {
			txID := key
			if id == "" {
				txID = uuid.NewString()
			}
			result = append(result, domain.Transaction{
				ID:           txID,
				CustomerName: customer,
				CreatedAt:    createdAt,
			})
			totals = append(totals, decimal.Zero)
			pos = len(result) - 1
			byID[key] = pos
		}
		result[pos].LineItems = append(result[pos].LineItems, item)
		totals[pos] = totals[pos].Add(decimal.NewFromFloat(item.TotalPrice))

		lastKey, lastBase = "", ""
		if id == "" {
			lastKey, lastBase = key, base
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	for i := range result {
		result[i].TotalTransaction = totals[i].Round(2).InexactFloat64()
	}
	return result, nil
}

func parseLineItem(cells []string, colMap map[string]int, fabric string) (domain.LineItem, error) {
	weightRaw := readCell(cells, colMap["weight"])
	weight, err := parseAmount(weightRaw)
	if err != nil || !weight.IsPositive() {
		return domain.LineItem{}, fmt.Errorf("invalid weight %q", weightRaw)
	}

	price, err := parseNonNegative(readCell(cells, colMap["price_per_kg"]))
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("invalid price_per_kg: %w", err)
	}

	total := weight.Mul(decimal.NewFromFloat(price)).Round(2).InexactFloat64()
	if raw := optionalCell(cells, colMap, "total_price"); raw != "" {
		total, err = parseNonNegative(raw)
		if err != nil {
			return domain.LineItem{}, fmt.Errorf("invalid total_price: %w", err)
		}
	}

	return domain.LineItem{
		FabricName: fabric,
		Weight:     weightRaw,
		PricePerKg: price,
		TotalPrice: total,
	}, nil
}

// parseDate accepts the text layouts above and raw Excel date serials.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("value is empty")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}
