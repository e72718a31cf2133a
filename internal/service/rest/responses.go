package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/service/auth"
)

type errorResponse struct {
	Error string `json:"error"`
	// Details заполняется для ошибок нехватки товара.
	Details any `json:"details,omitempty"`
}

type stockDetails struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int32  `json:"requested"`
	Available   int32  `json:"available"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondDomainError переводит доменные ошибки в HTTP-статусы.
// Неопознанные ошибки отдаются как 500 без внутренних деталей.
func respondDomainError(w http.ResponseWriter, logger *log.Entry, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondJSON(w, http.StatusConflict, errorResponse{
			Error: "insufficient stock",
			Details: stockDetails{
				ProductID:   stockErr.ProductID,
				ProductName: stockErr.ProductName,
				Requested:   stockErr.Requested,
				Available:   stockErr.Available,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, domain.ErrProductUnavailable):
		respondError(w, http.StatusConflict, "product is unavailable")
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid order status transition")
	case errors.Is(err, domain.ErrQuantityInvalid),
		errors.Is(err, domain.ErrDeliveryAddressRequired),
		errors.Is(err, domain.ErrContactInfoRequired),
		errors.Is(err, domain.ErrItemsRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email is already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrFavoriteExists):
		respondError(w, http.StatusConflict, "product is already in favorites")
	case errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
	default:
		logger.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
