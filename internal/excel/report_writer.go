package excel

import (
	"fmt"
	"io"

	"fabricstore/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetMonthly   = "Monthly"
	SheetCustomers = "Customers"
	SheetFabrics   = "Fabrics"
	SheetForecast  = "Forecast"
)

type AnalyticsReport struct {
	Year      int
	Monthly   []domain.MonthlySeriesPoint
	Customers domain.EntityRanking
	Fabrics   domain.EntityRanking
	Forecast  *ForecastSheet
}

type ForecastSheet struct {
	MonthLabels    []string
	NextMonthLabel string
	Result         domain.ForecastResult
}

// WriteAnalyticsReport writes the yearly workbook. The forecast sheet is
// omitted when report.Forecast is nil.
func WriteAnalyticsReport(w io.Writer, report AnalyticsReport) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetMonthly); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCustomers, SheetFabrics} {
		if _, err := file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	monthly := [][]any{{"Month", fmt.Sprintf("Weight kg (%d)", report.Year)}}
	for _, point := range report.Monthly {
		monthly = append(monthly, []any{point.MonthLabel, point.TotalWeightKg})
	}
	if err := writeTable(file, SheetMonthly, monthly, bold); err != nil {
		return err
	}

	customers := [][]any{{"Customer", "Weight kg", "Transaction value"}}
	for _, row := range report.Customers.ByWeight {
		customers = append(customers, []any{row.Name, row.TotalWeightKg, row.TotalTransactionValue})
	}
	if err := writeTable(file, SheetCustomers, customers, bold); err != nil {
		return err
	}

	fabrics := [][]any{{"Fabric", "Weight kg"}}
	for _, row := range report.Fabrics.ByWeight {
		fabrics = append(fabrics, []any{row.Name, row.TotalWeightKg})
	}
	if err := writeTable(file, SheetFabrics, fabrics, bold); err != nil {
		return err
	}

	if report.Forecast != nil {
		if _, err := file.NewSheet(SheetForecast); err != nil {
			return fmt.Errorf("create sheet %s: %w", SheetForecast, err)
		}
		if err := writeTable(file, SheetForecast, forecastRows(*report.Forecast), bold); err != nil {
			return err
		}
	}

	file.SetActiveSheet(0)
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func forecastRows(sheet ForecastSheet) [][]any {
	res := sheet.Result
	rows := [][]any{{"Month", "x", "Actual kg", "Fitted kg", "Absolute error"}}
	for i := range res.Y {
		label := ""
		if i < len(sheet.MonthLabels) {
			label = sheet.MonthLabels[i]
		}
		rows = append(rows, []any{label, res.X[i], res.Y[i], res.FittedValues[i], res.AbsoluteErrors[i]})
	}
	rows = append(rows,
		[]any{},
		[]any{"a", res.A},
		[]any{"b", res.B},
		[]any{"MAE", res.MAE},
		[]any{"MAPE %", res.MAPE},
		[]any{"Forecast " + sheet.NextMonthLabel, res.PredictedNext},
	)
	return rows
}

func writeTable(file *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := file.SetColWidth(sheet, "A", "A", 18); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}
