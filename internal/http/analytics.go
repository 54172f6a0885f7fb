package http

import (
	"fmt"
	"net/http"
	"strings"

	"fabricstore/internal/domain"
	"fabricstore/internal/period"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) Recap(w http.ResponseWriter, r *http.Request) {
	kind, ref, err := h.parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.Recap(r.Context(), kind, ref)
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	h.leaderboard(w, r, domain.GroupByCustomer)
}

func (h *Handler) TopFabrics(w http.ResponseWriter, r *http.Request) {
	h.leaderboard(w, r, domain.GroupByFabric)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request, groupBy domain.GroupBy) {
	kind, ref, err := h.parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fetch := h.svc.CustomerLeaderboard
	if groupBy == domain.GroupByFabric {
		fetch = h.svc.FabricLeaderboard
	}
	report, err := fetch(r.Context(), kind, ref, limit)
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) MonthlyChart(w http.ResponseWriter, r *http.Request) {
	year, err := parseOptionalInt(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.MonthlyChart(r.Context(), year)
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Forecast answers 200 with available=false when fewer than two months of
// the year have started.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	fabric := strings.TrimSpace(r.URL.Query().Get("fabric"))
	report, err := h.svc.ForecastNextMonth(r.Context(), fabric)
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ExportAnalytics(w http.ResponseWriter, r *http.Request) {
	year, err := parseOptionalInt(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := h.svc.ExportWorkbook(r.Context(), year)
	if err != nil {
		writeServiceError(w, err, "not found")
		return
	}
	fileName := "analytics.xlsx"
	if year > 0 {
		fileName = fmt.Sprintf("analytics-%d.xlsx", year)
	}
	writeFile(w, xlsxContentType, fileName, body)
}

// parsePeriod reads period, date, month and year. Without date the service
// uses the current time.
func (h *Handler) parsePeriod(r *http.Request) (period.Kind, period.Reference, error) {
	query := r.URL.Query()
	kind, err := period.ParseKind(query.Get("period"))
	if err != nil {
		return "", period.Reference{}, err
	}

	var ref period.Reference
	day, err := parseOptionalTime(query.Get("date"), h.svc.Location(), false)
	if err != nil {
		return "", period.Reference{}, fmt.Errorf("invalid date")
	}
	if day != nil {
		ref.Now = *day
	}
	month, err := parseOptionalInt(query.Get("month"), 0)
	if err != nil {
		return "", period.Reference{}, fmt.Errorf("invalid month")
	}
	if month != 0 && !domain.Month(month).Valid() {
		return "", period.Reference{}, fmt.Errorf("month must be between 1 and 12")
	}
	ref.Month = domain.Month(month)
	if ref.Year, err = parseOptionalInt(query.Get("year"), 0); err != nil {
		return "", period.Reference{}, fmt.Errorf("invalid year")
	}
	return kind, ref, nil
}
