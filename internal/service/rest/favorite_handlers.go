package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleFavoriteList(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	products, err := h.favorites.List(claims.UserID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := h.favorites.Add(claims.UserID, chi.URLParam(r, "productID")); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, nil)
}

func (h *Handler) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := h.favorites.Remove(claims.UserID, chi.URLParam(r, "productID")); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
