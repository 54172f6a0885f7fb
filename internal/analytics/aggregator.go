// Package analytics reduces transaction records into the recap, leaderboard
// and monthly chart shapes used by the dashboard. Every function is pure: the
// caller supplies fully loaded records and gets fresh values back.
package analytics

import (
	"sort"
	"strings"

	"fabricstore/internal/domain"
)

// ComputeRecap summarises the records created inside window. The weight total
// is rounded once, on the final sum; revenue is left as is.
func ComputeRecap(records []domain.Transaction, window domain.DateWindow) domain.RecapSummary {
	var (
		summary domain.RecapSummary
		weight  float64
	)
	for _, record := range records {
		if !window.Contains(record.CreatedAt) {
			continue
		}
		summary.TransactionCount++
		summary.TotalRevenue += record.TotalTransaction
		weight += record.TotalWeightKg()
	}
	summary.TotalWeightKg = domain.Round2(weight)
	return summary
}

// ComputeEntityTotals groups the records inside window by customer or by
// fabric. Only entities with at least one matching transaction (or line item,
// for fabrics) appear. Rows with equal keys keep first-appearance order.
func ComputeEntityTotals(records []domain.Transaction, window domain.DateWindow, groupBy domain.GroupBy) domain.EntityRanking {
	ranking := domain.EntityRanking{GroupBy: groupBy}

	var totals []domain.EntityTotal
	switch groupBy {
	case domain.GroupByCustomer:
		totals = customerTotals(records, window)
	case domain.GroupByFabric:
		totals = fabricTotals(records, window)
	default:
		return ranking
	}

	ranking.ByWeight = sortedBy(totals, func(e domain.EntityTotal) float64 { return e.TotalWeightKg })
	if groupBy == domain.GroupByCustomer {
		ranking.ByValue = sortedBy(totals, func(e domain.EntityTotal) float64 { return e.TotalTransactionValue })
	}
	return ranking
}

func customerTotals(records []domain.Transaction, window domain.DateWindow) []domain.EntityTotal {
	index := map[string]int{}
	weights := []float64{}
	totals := []domain.EntityTotal{}
	for _, record := range records {
		if !window.Contains(record.CreatedAt) {
			continue
		}
		name := strings.TrimSpace(record.CustomerName)
		pos, ok := index[name]
		if !ok {
			pos = len(totals)
			index[name] = pos
			totals = append(totals, domain.EntityTotal{Name: name})
			weights = append(weights, 0)
		}
		weights[pos] += record.TotalWeightKg()
		totals[pos].TotalTransactionValue += record.TotalTransaction
	}
	for i := range totals {
		totals[i].TotalWeightKg = domain.Round2(weights[i])
	}
	return totals
}

func fabricTotals(records []domain.Transaction, window domain.DateWindow) []domain.EntityTotal {
	index := map[string]int{}
	weights := []float64{}
	totals := []domain.EntityTotal{}
	for _, record := range records {
		if !window.Contains(record.CreatedAt) {
			continue
		}
		for _, item := range record.LineItems {
			name := strings.TrimSpace(item.FabricName)
			pos, ok := index[name]
			if !ok {
				pos = len(totals)
				index[name] = pos
				totals = append(totals, domain.EntityTotal{Name: name})
				weights = append(weights, 0)
			}
			weights[pos] += item.WeightKg()
		}
	}
	for i := range totals {
		totals[i].TotalWeightKg = domain.Round2(weights[i])
	}
	return totals
}

func sortedBy(totals []domain.EntityTotal, key func(domain.EntityTotal) float64) []domain.EntityTotal {
	out := make([]domain.EntityTotal, len(totals))
	copy(out, totals)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	return out
}

// ComputeMonthlySeries returns exactly twelve points, January first, holding
// the line item weight sold in each month of year. Months without sales are 0.
func ComputeMonthlySeries(records []domain.Transaction, year int, locale domain.Locale) []domain.MonthlySeriesPoint {
	var weights [12]float64
	for _, record := range records {
		if record.CreatedAt.Year() != year {
			continue
		}
		weights[domain.MonthOf(record.CreatedAt).Index()] += record.TotalWeightKg()
	}

	series := make([]domain.MonthlySeriesPoint, 0, 12)
	for i, weight := range weights {
		month := domain.Month(i + 1)
		series = append(series, domain.MonthlySeriesPoint{
			Month:         month,
			MonthLabel:    month.Label(locale),
			TotalWeightKg: domain.Round2(weight),
		})
	}
	return series
}

// FilterFabric keeps only the line items of the named fabric (case-insensitive)
// and drops records left without any. Totals of the returned records are the
// sum of the kept line items.
func FilterFabric(records []domain.Transaction, fabricName string) []domain.Transaction {
	target := strings.TrimSpace(fabricName)
	out := make([]domain.Transaction, 0, len(records))
	for _, record := range records {
		var (
			items []domain.LineItem
			total float64
		)
		for _, item := range record.LineItems {
			if strings.EqualFold(strings.TrimSpace(item.FabricName), target) {
				items = append(items, item)
				total += item.TotalPrice
			}
		}
		if len(items) == 0 {
			continue
		}
		record.LineItems = items
		record.TotalTransaction = total
		out = append(out, record)
	}
	return out
}
