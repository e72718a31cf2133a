package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/service/checkout"
)

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	owner := cartOwner(r)
	if owner.IsZero() {
		respondError(w, http.StatusBadRequest, "authorization or X-Session-Id header required")
		return
	}

	var req placeOrderRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.carts.Summary(owner)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	order, err := h.checkout.PlaceOrder(checkout.Request{
		CartID:          summary.Cart.ID,
		UserID:          owner.UserID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryMethod:  domain.DeliveryMethod(req.DeliveryMethod),
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, newOrderView(order))
}

func (h *Handler) handleOrderList(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	query := r.URL.Query()

	var status domain.OrderStatus
	if raw := query.Get("status"); raw != "" {
		parsed, err := domain.ParseOrderStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	limit, err := parseIntParam(query.Get("limit"), "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := parseIntParam(query.Get("offset"), "offset")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, total, err := h.lifecycle.ListByUser(claims.UserID, status, limit, offset)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}
	respondJSON(w, http.StatusOK, orderListView{
		Orders: views,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handler) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	order, err := h.lifecycle.Get(chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	// Чужой заказ для не-админа неотличим от несуществующего.
	if order.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		respondError(w, http.StatusNotFound, domain.ErrOrderNotFound.Error())
		return
	}

	respondJSON(w, http.StatusOK, newOrderView(order))
}
