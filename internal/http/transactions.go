package http

import (
	"fmt"
	"net/http"
	"strings"

	"fabricstore/internal/domain"
	"fabricstore/internal/excel"
	"fabricstore/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"), h.svc.Location(), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseOptionalTime(query.Get("to"), h.svc.Location(), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	items, err := h.svc.ListTransactions(r.Context(), repository.TransactionListFilter{
		Customer: query.Get("customer"),
		From:     from,
		To:       to,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type createTransactionRequest struct {
	CustomerName  string                        `json:"customer_name"`
	AdminUsername *string                       `json:"admin_username"`
	CreatedAt     string                        `json:"created_at"`
	LineItems     []domain.TransactionLineInput `json:"line_items"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	createdAt, err := parseOptionalTime(req.CreatedAt, h.svc.Location(), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid created_at")
		return
	}
	record, err := h.svc.CreateTransaction(r.Context(), repository.TransactionCreateInput{
		CustomerName:  req.CustomerName,
		AdminUsername: req.AdminUsername,
		CreatedAt:     createdAt,
		Lines:         req.LineItems,
	})
	if err != nil {
		writeServiceError(w, err, "transaction not found")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var admin *string
	if value := strings.TrimSpace(r.URL.Query().Get("admin_username")); value != "" {
		admin = &value
	}
	if err := h.svc.DeleteTransaction(r.Context(), id, admin); err != nil {
		writeServiceError(w, err, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TransactionReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := h.svc.TransactionReceipt(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "transaction not found")
		return
	}
	writeFile(w, "application/pdf", fmt.Sprintf("receipt-%s.pdf", id), body)
}

func (h *Handler) ImportTransactionsExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	records, err := excel.ParseTransactionRows(file, h.svc.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inserted, err := h.svc.ImportTransactions(r.Context(), records)
	if err != nil {
		writeServiceError(w, err, "transaction not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":    header.Filename,
		"transactions": len(records),
		"inserted":     inserted,
		"skipped":      len(records) - inserted,
	})
}

func parseTransactionID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid transaction id")
	}
	return id.String(), nil
}
