package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleCartGet(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	summary, err := h.carts.Summary(owner)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(summary))
}

func (h *Handler) handleCartAddItem(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	var req addCartItemRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.carts.Add(owner, req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(summary))
}

func (h *Handler) handleCartUpdateItem(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	var req updateCartItemRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.carts.UpdateQuantity(owner, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(summary))
}

func (h *Handler) handleCartRemoveItem(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	summary, err := h.carts.Remove(owner, chi.URLParam(r, "itemID"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(summary))
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	if err := h.carts.Clear(owner); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
