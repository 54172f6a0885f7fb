package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"fabricstore/internal/analytics"
	"fabricstore/internal/domain"
	"fabricstore/internal/excel"
	"fabricstore/internal/forecast"
	"fabricstore/internal/period"
)

const dashboardLeaderboardSize = 5

type RecapReport struct {
	Period  period.Kind         `json:"period"`
	Window  domain.DateWindow   `json:"window"`
	Summary domain.RecapSummary `json:"summary"`
}

type LeaderboardReport struct {
	Period  period.Kind          `json:"period"`
	Window  domain.DateWindow    `json:"window"`
	Ranking domain.EntityRanking `json:"ranking"`
}

type MonthlyReport struct {
	Year   int                         `json:"year"`
	Points []domain.MonthlySeriesPoint `json:"points"`
}

// ForecastReport is the next-month projection over the months of the current
// year that have started. Result is nil when Available is false.
type ForecastReport struct {
	Fabric         string                 `json:"fabric,omitempty"`
	Year           int                    `json:"year"`
	MonthLabels    []string               `json:"month_labels"`
	Available      bool                   `json:"available"`
	NextMonth      domain.Month           `json:"next_month"`
	NextMonthLabel string                 `json:"next_month_label"`
	Result         *domain.ForecastResult `json:"result,omitempty"`
}

type DashboardReport struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Daily        RecapReport          `json:"daily"`
	Weekly       RecapReport          `json:"weekly"`
	Monthly      RecapReport          `json:"monthly"`
	TopCustomers domain.EntityRanking `json:"top_customers"`
	TopFabrics   domain.EntityRanking `json:"top_fabrics"`
}

// reference defaults Now to the current time in the store's zone.
func (s *Service) reference(ref period.Reference) period.Reference {
	if ref.Now.IsZero() {
		ref.Now = s.now()
		return ref
	}
	ref.Now = ref.Now.In(s.opts.Location)
	return ref
}

func (s *Service) resolve(kind period.Kind, ref period.Reference) (domain.DateWindow, error) {
	window, err := period.Resolve(kind, s.reference(ref))
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	return window, nil
}

func (s *Service) fetch(ctx context.Context, window domain.DateWindow) ([]domain.Transaction, error) {
	records, err := s.source.ListTransactionsBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	s.localize(records)
	return records, nil
}

func (s *Service) Recap(ctx context.Context, kind period.Kind, ref period.Reference) (RecapReport, error) {
	window, err := s.resolve(kind, ref)
	if err != nil {
		return RecapReport{}, err
	}
	records, err := s.fetch(ctx, window)
	if err != nil {
		return RecapReport{}, err
	}
	return RecapReport{Period: kind, Window: window, Summary: analytics.ComputeRecap(records, window)}, nil
}

func (s *Service) CustomerLeaderboard(ctx context.Context, kind period.Kind, ref period.Reference, limit int) (LeaderboardReport, error) {
	return s.leaderboard(ctx, domain.GroupByCustomer, kind, ref, limit)
}

func (s *Service) FabricLeaderboard(ctx context.Context, kind period.Kind, ref period.Reference, limit int) (LeaderboardReport, error) {
	return s.leaderboard(ctx, domain.GroupByFabric, kind, ref, limit)
}

func (s *Service) leaderboard(
	ctx context.Context,
	groupBy domain.GroupBy,
	kind period.Kind,
	ref period.Reference,
	limit int,
) (LeaderboardReport, error) {
	if limit < 0 {
		return LeaderboardReport{}, fmt.Errorf("limit must not be negative: %w", ErrInvalidInput)
	}
	window, err := s.resolve(kind, ref)
	if err != nil {
		return LeaderboardReport{}, err
	}
	records, err := s.fetch(ctx, window)
	if err != nil {
		return LeaderboardReport{}, err
	}
	ranking := analytics.ComputeEntityTotals(records, window, groupBy).Limit(limit)
	return LeaderboardReport{Period: kind, Window: window, Ranking: ranking}, nil
}

// MonthlyChart returns the twelve monthly weight totals of year; zero means
// the current year.
func (s *Service) MonthlyChart(ctx context.Context, year int) (MonthlyReport, error) {
	year, err := s.year(year)
	if err != nil {
		return MonthlyReport{}, err
	}
	records, err := s.fetch(ctx, period.Yearly(year, s.opts.Location))
	if err != nil {
		return MonthlyReport{}, err
	}
	return MonthlyReport{Year: year, Points: analytics.ComputeMonthlySeries(records, year, s.opts.Locale)}, nil
}

// ForecastNextMonth fits a trend to this year's monthly sold weight, optionally
// restricted to one fabric. Fewer than two elapsed months is not an error: the
// report comes back with Available false.
func (s *Service) ForecastNextMonth(ctx context.Context, fabric string) (ForecastReport, error) {
	now := s.now()
	windows := period.ElapsedMonthWindows(now)
	records, err := s.fetch(ctx, domain.DateWindow{Start: windows[0].Start, End: windows[len(windows)-1].End})
	if err != nil {
		return ForecastReport{}, err
	}
	return s.forecastFrom(records, fabric, now, windows)
}

func (s *Service) forecastFrom(
	records []domain.Transaction,
	fabric string,
	now time.Time,
	windows []domain.DateWindow,
) (ForecastReport, error) {
	if fabric != "" {
		records = analytics.FilterFabric(records, fabric)
	}

	series := make([]float64, len(windows))
	labels := make([]string, len(windows))
	for i, window := range windows {
		series[i] = analytics.ComputeRecap(records, window).TotalWeightKg
		labels[i] = domain.MonthOf(window.Start).Label(s.opts.Locale)
	}

	next := domain.MonthOf(now).Next()
	report := ForecastReport{
		Fabric:         fabric,
		Year:           now.Year(),
		MonthLabels:    labels,
		NextMonth:      next,
		NextMonthLabel: next.Label(s.opts.Locale),
	}

	result, err := forecast.FitTrend(series)
	if errors.Is(err, forecast.ErrInsufficientData) {
		return report, nil
	}
	if err != nil {
		return ForecastReport{}, err
	}
	report.Available = true
	report.Result = &result
	return report, nil
}

// Dashboard reads the union of its windows once and derives every figure from
// that single snapshot.
func (s *Service) Dashboard(ctx context.Context) (DashboardReport, error) {
	now := s.now()
	ref := period.Reference{Now: now}
	daily, _ := period.Resolve(period.KindDaily, ref)
	weekly, _ := period.Resolve(period.KindWeekly, ref)
	monthly, _ := period.Resolve(period.KindMonthly, ref)

	span := monthly
	if weekly.Start.Before(span.Start) {
		span.Start = weekly.Start
	}
	records, err := s.fetch(ctx, span)
	if err != nil {
		return DashboardReport{}, err
	}

	recap := func(kind period.Kind, window domain.DateWindow) RecapReport {
		return RecapReport{Period: kind, Window: window, Summary: analytics.ComputeRecap(records, window)}
	}
	return DashboardReport{
		GeneratedAt:  now,
		Daily:        recap(period.KindDaily, daily),
		Weekly:       recap(period.KindWeekly, weekly),
		Monthly:      recap(period.KindMonthly, monthly),
		TopCustomers: analytics.ComputeEntityTotals(records, monthly, domain.GroupByCustomer).Limit(dashboardLeaderboardSize),
		TopFabrics:   analytics.ComputeEntityTotals(records, monthly, domain.GroupByFabric).Limit(dashboardLeaderboardSize),
	}, nil
}

// ExportWorkbook builds the yearly analytics workbook. The forecast sheet is
// only filled for the current year.
func (s *Service) ExportWorkbook(ctx context.Context, year int) ([]byte, error) {
	year, err := s.year(year)
	if err != nil {
		return nil, err
	}
	window := period.Yearly(year, s.opts.Location)
	records, err := s.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	report := excel.AnalyticsReport{
		Year:      year,
		Monthly:   analytics.ComputeMonthlySeries(records, year, s.opts.Locale),
		Customers: analytics.ComputeEntityTotals(records, window, domain.GroupByCustomer),
		Fabrics:   analytics.ComputeEntityTotals(records, window, domain.GroupByFabric),
	}
	if now := s.now(); now.Year() == year {
		fc, err := s.forecastFrom(records, "", now, period.ElapsedMonthWindows(now))
		if err != nil {
			return nil, err
		}
		if fc.Available {
			report.Forecast = &excel.ForecastSheet{
				MonthLabels:    fc.MonthLabels,
				NextMonthLabel: fc.NextMonthLabel,
				Result:         *fc.Result,
			}
		}
	}

	var buf bytes.Buffer
	if err := excel.WriteAnalyticsReport(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) year(year int) (int, error) {
	if year == 0 {
		return s.now().Year(), nil
	}
	if year < 1 || year > 9999 {
		return 0, fmt.Errorf("year must be between 1 and 9999: %w", ErrInvalidInput)
	}
	return year, nil
}
