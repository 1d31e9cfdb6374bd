package http

import (
	"net/http"
	"time"

	"caixa/internal/core"
	"caixa/internal/store"
)

type saleRequest struct {
	Items         *[]apiLineItem `json:"items"`
	PaymentMethod *string        `json:"payment_method"`
	Date          *string        `json:"date"`
}

func (s *Server) handleListSales(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()
	out := make([]apiSale, 0, len(snapshot.Sales))
	for _, sale := range snapshot.Sales {
		out = append(out, toAPISale(sale))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	if req.Items == nil || req.PaymentMethod == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "itens e forma de pagamento são obrigatórios"})
		return
	}
	items := toLineItems(*req.Items)

	var (
		sale core.Sale
		err  error
	)
	if req.Date != nil && *req.Date != "" {
		var date time.Time
		date, err = parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "data inválida"})
			return
		}
		sale, err = s.store.AddRetroactiveSale(r.Context(), items, *req.PaymentMethod, date)
	} else {
		sale, err = s.store.AddSale(r.Context(), items, *req.PaymentMethod)
	}
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toAPISale(sale))
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	patch := store.SalePatch{PaymentMethod: req.PaymentMethod}
	if req.Items != nil {
		items := toLineItems(*req.Items)
		patch.Items = &items
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "data inválida"})
			return
		}
		patch.Date = &date
	}

	res, err := s.store.EditSale(r.Context(), r.PathValue("id"), patch)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteSale(r.Context(), r.PathValue("id"))
	s.writeResult(w, r, res, err)
}
