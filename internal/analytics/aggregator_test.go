package analytics

import (
	"testing"
	"time"

	"fabricstore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func tx(customer string, created time.Time, total float64, items ...domain.LineItem) domain.Transaction {
	return domain.Transaction{
		ID:               customer + created.Format(time.RFC3339),
		CustomerName:     customer,
		CreatedAt:        created,
		LineItems:        items,
		TotalTransaction: total,
	}
}

func item(fabric, weight string) domain.LineItem {
	return domain.LineItem{FabricName: fabric, Weight: weight}
}

func march2024() domain.DateWindow {
	return domain.DateWindow{
		Start: at(2024, time.March, 1, 0),
		End:   at(2024, time.April, 1, 0).Add(-time.Nanosecond),
	}
}

func TestComputeRecapEmpty(t *testing.T) {
	assert.Equal(t, domain.RecapSummary{}, ComputeRecap(nil, march2024()))
}

func TestComputeRecapFiltersAndSums(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Budi", at(2024, time.March, 3, 10), 150000, item("Katun", "2.5"), item("Rayon", "1.25")),
		tx("Sari", at(2024, time.March, 20, 9), 80000, item("Katun", "bad")),
		tx("Budi", at(2024, time.February, 28, 9), 999999, item("Katun", "40")),
		tx("Sari", at(2024, time.April, 1, 0), 999999, item("Katun", "40")),
	}

	summary := ComputeRecap(records, window)

	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, 3.75, summary.TotalWeightKg)
	assert.Equal(t, 230000.0, summary.TotalRevenue)
}

func TestComputeRecapIncludesBoundaryTimestamps(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("A", window.Start, 10, item("Katun", "1")),
		tx("B", window.End, 20, item("Katun", "2")),
	}

	summary := ComputeRecap(records, window)

	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, 3.0, summary.TotalWeightKg)
	assert.Equal(t, 30.0, summary.TotalRevenue)
}

func TestComputeRecapRoundsOnceOnFinalSum(t *testing.T) {
	window := march2024()
	// Each record would round up on its own (0.005 -> 0.01); the exact sum is 0.015.
	records := []domain.Transaction{
		tx("A", at(2024, time.March, 2, 0), 0, item("Katun", "0.005")),
		tx("B", at(2024, time.March, 3, 0), 0, item("Katun", "0.005")),
		tx("C", at(2024, time.March, 4, 0), 0, item("Katun", "0.005")),
	}

	summary := ComputeRecap(records, window)

	assert.Equal(t, domain.Round2(0.005+0.005+0.005), summary.TotalWeightKg)
	assert.NotEqual(t, 0.03, summary.TotalWeightKg)
}

func TestComputeEntityTotalsByCustomer(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Budi", at(2024, time.March, 1, 8), 100, item("Katun", "3")),
		tx("Sari", at(2024, time.March, 2, 8), 500, item("Rayon", "1")),
		tx("Budi", at(2024, time.March, 5, 8), 50, item("Linen", "2")),
		tx("Dewi", at(2024, time.May, 5, 8), 9999, item("Linen", "99")),
	}

	ranking := ComputeEntityTotals(records, window, domain.GroupByCustomer)

	require.Len(t, ranking.ByWeight, 2)
	assert.Equal(t, domain.EntityTotal{Name: "Budi", TotalWeightKg: 5, TotalTransactionValue: 150}, ranking.ByWeight[0])
	assert.Equal(t, domain.EntityTotal{Name: "Sari", TotalWeightKg: 1, TotalTransactionValue: 500}, ranking.ByWeight[1])

	require.Len(t, ranking.ByValue, 2)
	assert.Equal(t, "Sari", ranking.ByValue[0].Name)
	assert.Equal(t, "Budi", ranking.ByValue[1].Name)
}

func TestComputeEntityTotalsByFabricFlattensLineItems(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Budi", at(2024, time.March, 1, 8), 100, item("Katun", "3"), item("Rayon", "4.5")),
		tx("Sari", at(2024, time.March, 2, 8), 500, item("Katun", "2"), item("Linen", "n/a")),
	}

	ranking := ComputeEntityTotals(records, window, domain.GroupByFabric)

	assert.Nil(t, ranking.ByValue)
	assert.Equal(t, []domain.EntityTotal{
		{Name: "Katun", TotalWeightKg: 5},
		{Name: "Rayon", TotalWeightKg: 4.5},
		{Name: "Linen", TotalWeightKg: 0},
	}, ranking.ByWeight)
}

func TestComputeEntityTotalsStableOnTies(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Zaki", at(2024, time.March, 1, 8), 10, item("Katun", "2")),
		tx("Andi", at(2024, time.March, 2, 8), 10, item("Katun", "2")),
		tx("Mira", at(2024, time.March, 3, 8), 10, item("Katun", "2")),
	}

	for i := 0; i < 5; i++ {
		ranking := ComputeEntityTotals(records, window, domain.GroupByCustomer)
		names := []string{ranking.ByWeight[0].Name, ranking.ByWeight[1].Name, ranking.ByWeight[2].Name}
		assert.Equal(t, []string{"Zaki", "Andi", "Mira"}, names)
	}
}

func TestComputeEntityTotalsFabricStableOnTies(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Budi", at(2024, time.March, 1, 8), 10, item("Rayon", "2"), item("Katun", "2")),
		tx("Sari", at(2024, time.March, 2, 8), 10, item("Linen", "2")),
	}

	for i := 0; i < 5; i++ {
		ranking := ComputeEntityTotals(records, window, domain.GroupByFabric)
		require.Len(t, ranking.ByWeight, 3)
		names := []string{ranking.ByWeight[0].Name, ranking.ByWeight[1].Name, ranking.ByWeight[2].Name}
		assert.Equal(t, []string{"Rayon", "Katun", "Linen"}, names)
	}
}

func TestOverflowingWeightsCountAsZero(t *testing.T) {
	window := march2024()
	records := []domain.Transaction{
		tx("Budi", at(2024, time.March, 1, 8), 100, item("Katun", "1e400"), item("Rayon", "2")),
		tx("Sari", at(2024, time.March, 2, 8), 50, item("Katun", "Inf")),
	}

	assert.NotPanics(t, func() {
		summary := ComputeRecap(records, window)
		assert.Equal(t, 2.0, summary.TotalWeightKg)
		assert.Equal(t, 150.0, summary.TotalRevenue)

		ranking := ComputeEntityTotals(records, window, domain.GroupByFabric)
		assert.Equal(t, []domain.EntityTotal{
			{Name: "Rayon", TotalWeightKg: 2},
			{Name: "Katun", TotalWeightKg: 0},
		}, ranking.ByWeight)

		customers := ComputeEntityTotals(records, window, domain.GroupByCustomer)
		require.Len(t, customers.ByWeight, 2)
		assert.Equal(t, 2.0, customers.ByWeight[0].TotalWeightKg)
		assert.Zero(t, customers.ByWeight[1].TotalWeightKg)

		series := ComputeMonthlySeries(records, 2024, domain.LocaleEnglish)
		assert.Equal(t, 2.0, series[2].TotalWeightKg)
	})
}

func TestComputeEntityTotalsUnknownGroup(t *testing.T) {
	ranking := ComputeEntityTotals([]domain.Transaction{tx("A", at(2024, time.March, 2, 0), 1)}, march2024(), domain.GroupBy("shop"))
	assert.Empty(t, ranking.ByWeight)
	assert.Empty(t, ranking.ByValue)
}

func TestComputeMonthlySeriesAlwaysTwelvePoints(t *testing.T) {
	records := []domain.Transaction{
		tx("A", at(2024, time.January, 10, 0), 0, item("Katun", "1.5")),
		tx("B", at(2024, time.January, 20, 0), 0, item("Katun", "2")),
		tx("C", at(2024, time.June, 1, 0), 0, item("Rayon", "3")),
		tx("D", at(2023, time.June, 1, 0), 0, item("Rayon", "100")),
	}

	series := ComputeMonthlySeries(records, 2024, domain.LocaleEnglish)

	require.Len(t, series, 12)
	for i, point := range series {
		assert.Equal(t, domain.Month(i+1), point.Month)
	}
	assert.Equal(t, "Jan", series[0].MonthLabel)
	assert.Equal(t, 3.5, series[0].TotalWeightKg)
	assert.Equal(t, 3.0, series[5].TotalWeightKg)
	for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 10, 11} {
		assert.Zero(t, series[i].TotalWeightKg, "month %d", i+1)
	}
}

func TestComputeMonthlySeriesNoData(t *testing.T) {
	series := ComputeMonthlySeries(nil, 2030, domain.LocaleIndonesian)
	require.Len(t, series, 12)
	assert.Equal(t, "Des", series[11].MonthLabel)
}

func TestFilterFabric(t *testing.T) {
	records := []domain.Transaction{
		tx("A", at(2024, time.March, 2, 0), 300,
			domain.LineItem{FabricName: "Katun", Weight: "2", TotalPrice: 100},
			domain.LineItem{FabricName: "Rayon", Weight: "4", TotalPrice: 200},
		),
		tx("B", at(2024, time.March, 3, 0), 50, domain.LineItem{FabricName: "Rayon", Weight: "1", TotalPrice: 50}),
	}

	filtered := FilterFabric(records, " katun ")

	require.Len(t, filtered, 1)
	assert.Equal(t, "A", filtered[0].CustomerName)
	assert.Len(t, filtered[0].LineItems, 1)
	assert.Equal(t, 100.0, filtered[0].TotalTransaction)
	assert.Len(t, records[0].LineItems, 2)
}
