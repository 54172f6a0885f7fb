package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/excel"
	"fabricstore/internal/period"
	"fabricstore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	records []domain.Transaction
	calls   []domain.DateWindow
	err     error
}

func (f *fakeSource) ListTransactionsBetween(_ context.Context, start, end time.Time) ([]domain.Transaction, error) {
	f.calls = append(f.calls, domain.DateWindow{Start: start, End: end})
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Transaction
	for _, record := range f.records {
		if !record.CreatedAt.Before(start) && !record.CreatedAt.After(end) {
			out = append(out, record)
		}
	}
	return out, nil
}

var jakarta = mustLocation("Asia/Jakarta")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func sale(customer string, at time.Time, total float64, items ...domain.LineItem) domain.Transaction {
	return domain.Transaction{
		ID:               customer + at.Format(time.RFC3339),
		CustomerName:     customer,
		CreatedAt:        at,
		LineItems:        items,
		TotalTransaction: total,
	}
}

func line(fabric, weight string) domain.LineItem {
	return domain.LineItem{FabricName: fabric, Weight: weight}
}

func newTestService(source TransactionSource, now time.Time) *Service {
	return NewWithSource(nil, source, Options{
		Location: jakarta,
		Locale:   domain.LocaleIndonesian,
		Now:      func() time.Time { return now },
	})
}

func TestRecapCurrentMonth(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 2, 28, 9, 0, 0, 0, jakarta), 100, line("Katun", "1")),
		sale("Budi", time.Date(2024, 3, 1, 0, 0, 0, 0, jakarta), 200, line("Katun", "2,5")),
		sale("Sari", time.Date(2024, 3, 31, 23, 59, 59, 0, jakarta), 300, line("Rayon", "1.25")),
	}}
	svc := newTestService(source, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))

	report, err := svc.Recap(context.Background(), period.KindMonthly, period.Reference{})
	require.NoError(t, err)

	assert.Equal(t, period.KindMonthly, report.Period)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, jakarta), report.Window.Start)
	assert.Equal(t, domain.RecapSummary{TransactionCount: 2, TotalWeightKg: 3.75, TotalRevenue: 500}, report.Summary)
	require.Len(t, source.calls, 1)
	assert.Equal(t, report.Window, source.calls[0])
}

func TestRecapWeeklyForExplicitMonth(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 2, 7, 18, 0, 0, 0, jakarta), 10, line("Katun", "1")),
		sale("Budi", time.Date(2024, 2, 8, 0, 0, 0, 0, jakarta), 10, line("Katun", "1")),
	}}
	svc := newTestService(source, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))

	report, err := svc.Recap(context.Background(), period.KindWeekly, period.Reference{Month: 2})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, jakarta), report.Window.Start)
	assert.Equal(t, 1, report.Summary.TransactionCount)
}

func TestRecapUsesExplicitDateInStoreZone(t *testing.T) {
	source := &fakeSource{}
	svc := newTestService(source, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, jakarta)
	report, err := svc.Recap(context.Background(), period.KindDaily, period.Reference{Now: day})
	require.NoError(t, err)
	assert.Equal(t, day, report.Window.Start)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(-time.Nanosecond), report.Window.End)
}

func TestRecapRejectsInvalidMonth(t *testing.T) {
	svc := newTestService(&fakeSource{}, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))
	_, err := svc.Recap(context.Background(), period.KindMonthly, period.Reference{Month: 13})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecapPropagatesSourceError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&fakeSource{err: boom}, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))
	_, err := svc.Recap(context.Background(), period.KindDaily, period.Reference{})
	assert.ErrorIs(t, err, boom)
}

func TestLeaderboards(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 3, 2, 9, 0, 0, 0, jakarta), 100, line("Katun", "1"), line("Rayon", "4")),
		sale("Sari", time.Date(2024, 3, 3, 9, 0, 0, 0, jakarta), 900, line("Katun", "2")),
	}}
	svc := newTestService(source, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))

	customers, err := svc.CustomerLeaderboard(context.Background(), period.KindMonthly, period.Reference{}, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupByCustomer, customers.Ranking.GroupBy)
	assert.Equal(t, []domain.EntityTotal{{Name: "Budi", TotalWeightKg: 5, TotalTransactionValue: 100}}, customers.Ranking.ByWeight)
	assert.Equal(t, []domain.EntityTotal{{Name: "Sari", TotalWeightKg: 2, TotalTransactionValue: 900}}, customers.Ranking.ByValue)

	fabrics, err := svc.FabricLeaderboard(context.Background(), period.KindMonthly, period.Reference{}, 0)
	require.NoError(t, err)
	require.Len(t, fabrics.Ranking.ByWeight, 2)
	assert.Equal(t, "Rayon", fabrics.Ranking.ByWeight[0].Name)
	assert.Equal(t, 3.0, fabrics.Ranking.ByWeight[1].TotalWeightKg)
	assert.Empty(t, fabrics.Ranking.ByValue)

	_, err = svc.FabricLeaderboard(context.Background(), period.KindMonthly, period.Reference{}, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMonthlyChartLocalizesTimestamps(t *testing.T) {
	// 20:00 UTC on Feb 29 is already March 1 in Jakarta.
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC), 10, line("Katun", "3")),
		sale("Budi", time.Date(2024, 5, 10, 9, 0, 0, 0, jakarta), 10, line("Katun", "1.5")),
	}}
	svc := newTestService(source, time.Date(2024, 6, 1, 10, 0, 0, 0, jakarta))

	report, err := svc.MonthlyChart(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Year)
	require.Len(t, report.Points, 12)
	assert.Equal(t, 0.0, report.Points[1].TotalWeightKg)
	assert.Equal(t, 3.0, report.Points[2].TotalWeightKg)
	assert.Equal(t, "Mei", report.Points[4].MonthLabel)
	assert.Equal(t, 1.5, report.Points[4].TotalWeightKg)

	_, err = svc.MonthlyChart(context.Background(), 10000)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestForecastNeedsTwoMonths(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 1, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "3")),
	}}
	svc := newTestService(source, time.Date(2024, 1, 20, 10, 0, 0, 0, jakarta))

	report, err := svc.ForecastNextMonth(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Nil(t, report.Result)
	assert.Equal(t, domain.Month(2), report.NextMonth)
	assert.Equal(t, "Feb", report.NextMonthLabel)
	assert.Equal(t, []string{"Jan"}, report.MonthLabels)
}

func TestForecastFitsElapsedMonths(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 1, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "10"), line("Rayon", "7")),
		sale("Sari", time.Date(2024, 2, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "12")),
		sale("Budi", time.Date(2024, 3, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "14")),
		sale("Budi", time.Date(2023, 12, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "99")),
	}}
	svc := newTestService(source, time.Date(2024, 3, 15, 10, 0, 0, 0, jakarta))

	report, err := svc.ForecastNextMonth(context.Background(), "katun")
	require.NoError(t, err)
	require.True(t, report.Available)
	require.NotNil(t, report.Result)
	assert.Equal(t, []float64{10, 12, 14}, report.Result.Y)
	assert.Equal(t, []int{-1, 0, 1}, report.Result.X)
	assert.InDelta(t, 12, report.Result.A, 1e-9)
	assert.InDelta(t, 2, report.Result.B, 1e-9)
	assert.Equal(t, 16.0, report.Result.PredictedNext)
	assert.Equal(t, "Apr", report.NextMonthLabel)
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, report.MonthLabels)
	require.Len(t, source.calls, 1)

	all, err := svc.ForecastNextMonth(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{17, 12, 14}, all.Result.Y)
}

func TestDashboardReadsOnce(t *testing.T) {
	now := time.Date(2024, 3, 3, 15, 0, 0, 0, jakarta)
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 2, 27, 9, 0, 0, 0, jakarta), 50, line("Katun", "1")),
		sale("Sari", time.Date(2024, 3, 3, 9, 0, 0, 0, jakarta), 70, line("Rayon", "2")),
		sale("Budi", time.Date(2024, 3, 20, 9, 0, 0, 0, jakarta), 30, line("Katun", "4")),
	}}
	svc := newTestService(source, now)

	report, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, source.calls, 1)
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, jakarta), source.calls[0].Start)

	assert.Equal(t, 1, report.Daily.Summary.TransactionCount)
	assert.Equal(t, 2, report.Weekly.Summary.TransactionCount)
	assert.Equal(t, 2, report.Monthly.Summary.TransactionCount)
	assert.Equal(t, "Budi", report.TopCustomers.ByWeight[0].Name)
	assert.Equal(t, "Sari", report.TopCustomers.ByValue[0].Name)
	assert.Equal(t, "Katun", report.TopFabrics.ByWeight[0].Name)
}

func TestExportWorkbook(t *testing.T) {
	source := &fakeSource{records: []domain.Transaction{
		sale("Budi", time.Date(2024, 1, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "10")),
		sale("Sari", time.Date(2024, 2, 5, 9, 0, 0, 0, jakarta), 10, line("Katun", "12")),
	}}
	svc := newTestService(source, time.Date(2024, 2, 15, 10, 0, 0, 0, jakarta))

	body, err := svc.ExportWorkbook(context.Background(), 2024)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer file.Close()
	assert.Contains(t, file.GetSheetList(), excel.SheetForecast)

	past, err := svc.ExportWorkbook(context.Background(), 2023)
	require.NoError(t, err)
	file, err = excelize.OpenReader(bytes.NewReader(past))
	require.NoError(t, err)
	defer file.Close()
	assert.NotContains(t, file.GetSheetList(), excel.SheetForecast)
}

func TestCreateTransactionValidatesBeforeStorage(t *testing.T) {
	svc := newTestService(&fakeSource{}, time.Now())
	cases := []repository.TransactionCreateInput{
		{CustomerName: " ", Lines: []domain.TransactionLineInput{{FabricName: "Katun", Weight: "1"}}},
		{CustomerName: "Budi"},
		{CustomerName: "Budi", Lines: []domain.TransactionLineInput{{FabricName: "", Weight: "1"}}},
		{CustomerName: "Budi", Lines: []domain.TransactionLineInput{{FabricName: "Katun", Weight: "abc"}}},
		{CustomerName: "Budi", Lines: []domain.TransactionLineInput{{FabricName: "Katun", Weight: "1e400"}}},
		{CustomerName: "Budi", Lines: []domain.TransactionLineInput{{FabricName: "Katun", Weight: "Inf"}}},
		{CustomerName: "Budi", Lines: []domain.TransactionLineInput{{FabricName: "Katun", Weight: "1", PricePerKg: -5}}},
	}
	for _, input := range cases {
		_, err := svc.CreateTransaction(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestNormalizeNullable(t *testing.T) {
	blank := "  "
	value := " kasir "
	assert.Nil(t, normalizeNullable(nil))
	assert.Nil(t, normalizeNullable(&blank))
	assert.Equal(t, "kasir", *normalizeNullable(&value))
}
