package http

import (
	"net/http"
	"time"

	"caixa/internal/core"
	"caixa/internal/store"
)

type expenseRequest struct {
	Description   *string   `json:"description"`
	Amount        *string   `json:"amount"`
	Category      *string   `json:"category"`
	Date          *string   `json:"date"`
	IsRecurring   *bool     `json:"is_recurring"`
	RecurrenceDay *int      `json:"recurrence_day"`
	Tags          *[]string `json:"tags"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()
	out := make([]apiExpense, 0, len(snapshot.Expenses))
	for _, e := range snapshot.Expenses {
		out = append(out, toAPIExpense(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	if req.Description == nil || req.Amount == nil || req.Category == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "descrição, valor e categoria são obrigatórios"})
		return
	}
	cents, err := core.ParseDecimalToCents(*req.Amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "valor inválido"})
		return
	}

	in := store.ExpenseInput{
		Description: *req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    core.ExpenseCategory(*req.Category),
	}
	if req.IsRecurring != nil {
		in.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceDay != nil {
		in.RecurrenceDay = *req.RecurrenceDay
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}

	var expense core.Expense
	if req.Date != nil && *req.Date != "" {
		var date time.Time
		date, err = parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "data inválida"})
			return
		}
		expense, err = s.store.AddRetroactiveExpense(r.Context(), in, date)
	} else {
		expense, err = s.store.AddExpense(r.Context(), in)
	}
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toAPIExpense(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	patch := store.ExpensePatch{
		Description:   req.Description,
		IsRecurring:   req.IsRecurring,
		RecurrenceDay: req.RecurrenceDay,
		Tags:          req.Tags,
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "valor inválido"})
			return
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if req.Category != nil {
		category := core.ExpenseCategory(*req.Category)
		patch.Category = &category
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "data inválida"})
			return
		}
		patch.Date = &date
	}

	res, err := s.store.UpdateExpense(r.Context(), r.PathValue("id"), patch)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteExpense(r.Context(), r.PathValue("id"))
	s.writeResult(w, r, res, err)
}
