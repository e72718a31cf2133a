package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// phonePattern принимает телефоны в свободном международном формате.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{6,19}$`)

// newValidator создаёт validator с кастомным правилом phone.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"required,phone"`
	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	DeliveryAddress string `json:"delivery_address" validate:"required_if=DeliveryMethod delivery,max=500"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=cash card online"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type setOrderStatusRequest struct {
	Status        string `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=pending paid failed"`
}

type upsertProductRequest struct {
	SKU           string `json:"sku" validate:"required,max=64"`
	Slug          string `json:"slug" validate:"required,max=200"`
	Name          string `json:"name" validate:"required,max=300"`
	BrandID       string `json:"brand_id" validate:"omitempty,uuid4"`
	CategoryID    string `json:"category_id" validate:"omitempty,uuid4"`
	Description   string `json:"description"`
	PriceMinor    int64  `json:"price_minor" validate:"required,gt=0"`
	OldPriceMinor int64  `json:"old_price_minor" validate:"gte=0"`
	StockQuantity int32  `json:"stock_quantity" validate:"gte=0"`
	IsAvailable   *bool  `json:"is_available"`
	IsFeatured    bool   `json:"is_featured"`
	IsNew         bool   `json:"is_new"`
}

// decodeAndValidate читает JSON-тело и прогоняет структуру через validator.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := v.Struct(dst); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
