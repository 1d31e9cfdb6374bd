package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
	"caixa/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

type statusBody struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a bounded request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, 1<<20)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeActionError maps a failed store action to a status code. Internal
// detail stays in the logs; the body carries a one-line message.
func writeActionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrAuthRequired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "faça login para continuar"})
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "dados inválidos"})
	default:
		slog.ErrorContext(r.Context(), "remote write failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "erro ao acessar o backend remoto"})
	}
}

// writeResult translates a tagged action outcome. Applied invalidates the
// report caches before answering.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res store.Result, err error) {
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	switch res.Outcome {
	case store.OutcomeApplied:
		s.invalidateReports()
		writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
	case store.OutcomeRejected:
		writeJSON(w, http.StatusConflict, errorBody{Error: res.Reason})
	case store.OutcomeNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "não encontrado"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "resultado desconhecido"})
	}
}

// parseDate accepts RFC 3339 or a bare YYYY-MM-DD day.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

type apiLineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type apiProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type apiSale struct {
	ID            string        `json:"id"`
	Items         []apiLineItem `json:"items"`
	Total         string        `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	Date          time.Time     `json:"date"`
}

type apiExpense struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date"`
	IsRecurring   bool      `json:"is_recurring"`
	RecurrenceDay int       `json:"recurrence_day,omitempty"`
	Tags          []string  `json:"tags"`
}

func toAPIProduct(p core.Product) apiProduct {
	return apiProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       core.FormatCents(p.Price.Cents),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toAPISale(s core.Sale) apiSale {
	items := make([]apiLineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, apiLineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return apiSale{
		ID:            s.ID,
		Items:         items,
		Total:         core.FormatCents(s.Total.Cents),
		PaymentMethod: s.PaymentMethod,
		Date:          s.Date,
	}
}

func toAPIExpense(e core.Expense) apiExpense {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return apiExpense{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        core.FormatCents(e.Amount.Cents),
		Category:      string(e.Category),
		Date:          e.Date,
		IsRecurring:   e.IsRecurring,
		RecurrenceDay: e.RecurrenceDay,
		Tags:          tags,
	}
}

func toLineItems(items []apiLineItem) []core.LineItem {
	out := make([]core.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, core.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
