package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/service/lifecycle"
)

func (h *Handler) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req setOrderStatusRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status == "" && req.PaymentStatus == "" {
		respondError(w, http.StatusBadRequest, "status or payment_status is required")
		return
	}

	var change lifecycle.ChangeRequest
	if req.Status != "" {
		status, err := domain.ParseOrderStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		change.Status = &status
	}
	if req.PaymentStatus != "" {
		paymentStatus, err := domain.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		change.PaymentStatus = &paymentStatus
	}

	order, err := h.lifecycle.SetStatus(chi.URLParam(r, "orderID"), change)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(order))
}

func (h *Handler) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := productFromRequest(req)
	product.ID = uuid.NewString()
	if err := h.products.Create(product); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	created, err := h.products.Get(product.ID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProductView(created))
}

func (h *Handler) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	productID := chi.URLParam(r, "productID")
	existing, err := h.products.Get(productID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	product := productFromRequest(req)
	product.ID = productID
	// Резерв принадлежит заказам, через API он не правится. Остаток нельзя
	// опустить ниже резерва: зарезервированные единицы уже обещаны заказам.
	product.ReservedQuantity = existing.ReservedQuantity
	if product.StockQuantity < existing.ReservedQuantity {
		respondError(w, http.StatusConflict, fmt.Sprintf(
			"stock_quantity %d is below reserved quantity %d",
			product.StockQuantity, existing.ReservedQuantity))
		return
	}
	if err := h.products.Update(product); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	updated, err := h.products.Get(productID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(updated))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.stats.Snapshot()
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatsView(snapshot))
}

func productFromRequest(req upsertProductRequest) domain.Product {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return domain.Product{
		SKU:           req.SKU,
		Slug:          req.Slug,
		Name:          req.Name,
		BrandID:       req.BrandID,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		PriceMinor:    req.PriceMinor,
		OldPriceMinor: req.OldPriceMinor,
		StockQuantity: req.StockQuantity,
		IsAvailable:   available,
		IsFeatured:    req.IsFeatured,
		IsNew:         req.IsNew,
	}
}
