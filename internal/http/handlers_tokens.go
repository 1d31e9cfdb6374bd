package http

import (
	"net/http"
)

type tokenRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().PaymentMethods)
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	res, err := s.store.AddPaymentMethod(r.Context(), req.Name)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleRenamePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	res, err := s.store.UpdatePaymentMethod(r.Context(), r.PathValue("name"), req.Name)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.RemovePaymentMethod(r.Context(), r.PathValue("name"))
	s.writeResult(w, r, res, err)
}

func (s *Server) handleListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().ExpenseTags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	res, err := s.store.AddTag(r.Context(), req.Name)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleRenameTag(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	res, err := s.store.UpdateTag(r.Context(), r.PathValue("name"), req.Name)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.RemoveTag(r.Context(), r.PathValue("name"))
	s.writeResult(w, r, res, err)
}
