// Package receipt renders a printable PDF receipt for one sale.
package receipt

import (
	"fmt"
	"strings"

	"fabricstore/internal/domain"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"
)

type Options struct {
	StoreName string
}

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

func Render(tx domain.Transaction, opts Options) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A5)
	m.SetPageMargins(12, 12, 12)

	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(opts.StoreName, props.Text{Size: 16, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(6, func() {
		m.Col(12, func() {
			m.Text("Sales receipt", props.Text{Size: 9, Color: mediumGray})
		})
	})
	m.Row(6, func() {})

	m.Row(5, func() {
		m.Col(6, func() {
			m.Text(tx.CustomerName, props.Text{Size: 10, Style: consts.Bold, Color: darkGray})
		})
		m.Col(6, func() {
			m.Text(tx.CreatedAt.Format("02 Jan 2006 15:04"), props.Text{Size: 9, Color: mediumGray, Align: consts.Right})
		})
	})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text("No. "+tx.ID, props.Text{Size: 8, Color: mediumGray})
		})
	})
	if tx.AdminUsername != nil {
		m.Row(5, func() {
			m.Col(12, func() {
				m.Text("Served by "+*tx.AdminUsername, props.Text{Size: 8, Color: mediumGray})
			})
		})
	}
	m.Row(6, func() {})

	header := props.Text{Size: 8, Style: consts.Bold, Color: darkGray, Align: consts.Right}
	m.Row(6, func() {
		m.Col(5, func() {
			m.Text("Fabric", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
		})
		m.Col(2, func() { m.Text("Kg", header) })
		m.Col(2, func() { m.Text("Price/kg", header) })
		m.Col(3, func() { m.Text("Total", header) })
	})

	cell := props.Text{Size: 9, Color: darkGray, Align: consts.Right}
	for _, item := range tx.LineItems {
		m.Row(6, func() {
			m.Col(5, func() {
				m.Text(item.FabricName, props.Text{Size: 9, Color: darkGray})
			})
			m.Col(2, func() { m.Text(formatKg(item.WeightKg()), cell) })
			m.Col(2, func() { m.Text(FormatRupiah(item.PricePerKg), cell) })
			m.Col(3, func() { m.Text(FormatRupiah(item.TotalPrice), cell) })
		})
	}

	m.Line(1)
	m.Row(6, func() {
		m.Col(5, func() {
			m.Text("Total", props.Text{Size: 10, Style: consts.Bold, Color: darkGray})
		})
		m.Col(2, func() {
			m.Text(formatKg(domain.Round2(tx.TotalWeightKg())), props.Text{Size: 10, Style: consts.Bold, Color: darkGray, Align: consts.Right})
		})
		m.Col(2, func() {})
		m.Col(3, func() {
			m.Text(FormatRupiah(tx.TotalTransaction), props.Text{Size: 10, Style: consts.Bold, Color: darkGray, Align: consts.Right})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatRupiah formats an amount with "." thousand separators and a ","
// decimal part only when there are cents, e.g. "Rp 1.234,50".
func FormatRupiah(amount float64) string {
	value := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Neg()
	}

	whole := value.Truncate(0)
	cents := value.Sub(whole).Shift(2).IntPart()

	digits := whole.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "Rp " + sign + grouped.String()
	if cents != 0 {
		out += fmt.Sprintf(",%02d", cents)
	}
	return out
}

func formatKg(kg float64) string {
	return decimal.NewFromFloat(kg).Round(2).String()
}
