package http

import (
	"net/http"

	"caixa/internal/core"
	"caixa/internal/store"
)

type productRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()
	out := make([]apiProduct, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		out = append(out, toAPIProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	if req.Name == nil || req.Price == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "nome e preço são obrigatórios"})
		return
	}
	cents, err := core.ParsePriceToCents(*req.Price)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "preço inválido"})
		return
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	product, err := s.store.AddProduct(r.Context(), *req.Name, description, core.Money{Cents: cents})
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toAPIProduct(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "requisição inválida"})
		return
	}
	patch := store.ProductPatch{Name: req.Name, Description: req.Description}
	if req.Price != nil {
		cents, err := core.ParsePriceToCents(*req.Price)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "preço inválido"})
			return
		}
		patch.Price = &core.Money{Cents: cents}
	}

	res, err := s.store.UpdateProduct(r.Context(), r.PathValue("id"), patch)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DeleteProduct(r.Context(), r.PathValue("id"))
	s.writeResult(w, r, res, err)
}
