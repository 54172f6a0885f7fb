package domain

import "time"

// DateWindow bounds are both inclusive.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Month is a calendar month numbered 1 (January) to 12 (December).
type Month int

func MonthOf(t time.Time) Month {
	return Month(t.Month())
}

func (m Month) Valid() bool {
	return m >= 1 && m <= 12
}

// Index is the zero-based position of the month inside a year.
func (m Month) Index() int {
	return int(m) - 1
}

func (m Month) Next() Month {
	if m >= 12 {
		return 1
	}
	return m + 1
}

type Locale string

const (
	LocaleEnglish    Locale = "en"
	LocaleIndonesian Locale = "id"
)

var shortMonthNames = map[Locale][12]string{
	LocaleEnglish:    {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	LocaleIndonesian: {"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
}

func (l Locale) Valid() bool {
	_, ok := shortMonthNames[l]
	return ok
}

// Label returns the short month name, falling back to English for unknown locales.
func (m Month) Label(locale Locale) string {
	if !m.Valid() {
		return ""
	}
	names, ok := shortMonthNames[locale]
	if !ok {
		names = shortMonthNames[LocaleEnglish]
	}
	return names[m.Index()]
}

type GroupBy string

const (
	GroupByCustomer GroupBy = "customer"
	GroupByFabric   GroupBy = "fabric"
)

type RecapSummary struct {
	TransactionCount int     `json:"transaction_count"`
	TotalWeightKg    float64 `json:"total_weight_kg"`
	TotalRevenue     float64 `json:"total_revenue"`
}

// EntityTotal is one leaderboard row. TotalTransactionValue is only
// meaningful for customers.
type EntityTotal struct {
	Name                  string  `json:"name"`
	TotalWeightKg         float64 `json:"total_weight_kg"`
	TotalTransactionValue float64 `json:"total_transaction_value"`
}

type EntityRanking struct {
	GroupBy  GroupBy       `json:"group_by"`
	ByWeight []EntityTotal `json:"by_weight"`
	ByValue  []EntityTotal `json:"by_value,omitempty"`
}

// Limit keeps the first n rows of every view. n <= 0 keeps everything.
func (r EntityRanking) Limit(n int) EntityRanking {
	if n <= 0 {
		return r
	}
	if len(r.ByWeight) > n {
		r.ByWeight = r.ByWeight[:n]
	}
	if len(r.ByValue) > n {
		r.ByValue = r.ByValue[:n]
	}
	return r
}

type MonthlySeriesPoint struct {
	Month         Month   `json:"month"`
	MonthLabel    string  `json:"month_label"`
	TotalWeightKg float64 `json:"total_weight_kg"`
}

type ForecastResult struct {
	X                []int     `json:"x"`
	Y                []float64 `json:"y"`
	A                float64   `json:"a"`
	B                float64   `json:"b"`
	FittedValues     []float64 `json:"fitted_values"`
	PredictedNext    float64   `json:"predicted_next"`
	AbsoluteErrors   []float64 `json:"absolute_errors"`
	PercentageErrors []float64 `json:"percentage_errors"`
	MAE              float64   `json:"mae"`
	MAPE             float64   `json:"mape"`
}
