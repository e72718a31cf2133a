package rest

import (
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/service/cart"
)

type productView struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku"`
	Slug              string    `json:"slug"`
	Name              string    `json:"name"`
	Brand             string    `json:"brand,omitempty"`
	CategoryID        string    `json:"category_id,omitempty"`
	Description       string    `json:"description,omitempty"`
	PriceMinor        int64     `json:"price_minor"`
	OldPriceMinor     int64     `json:"old_price_minor,omitempty"`
	AvailableQuantity int32     `json:"available_quantity"`
	IsAvailable       bool      `json:"is_available"`
	IsFeatured        bool      `json:"is_featured"`
	IsNew             bool      `json:"is_new"`
	CreatedAt         time.Time `json:"created_at"`
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:                p.ID,
		SKU:               p.SKU,
		Slug:              p.Slug,
		Name:              p.Name,
		Brand:             p.BrandName,
		CategoryID:        p.CategoryID,
		Description:       p.Description,
		PriceMinor:        p.PriceMinor,
		OldPriceMinor:     p.OldPriceMinor,
		AvailableQuantity: p.AvailableQuantity(),
		IsAvailable:       p.IsAvailable,
		IsFeatured:        p.IsFeatured,
		IsNew:             p.IsNew,
		CreatedAt:         p.CreatedAt,
	}
}

type productListView struct {
	Products []productView `json:"products"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type categoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type brandView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type cartLineView struct {
	ItemID            string `json:"item_id"`
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	SKU               string `json:"sku"`
	Brand             string `json:"brand,omitempty"`
	PriceMinor        int64  `json:"price_minor"`
	Quantity          int32  `json:"quantity"`
	SubtotalMinor     int64  `json:"subtotal_minor"`
	AvailableQuantity int32  `json:"available_quantity"`
	Available         bool   `json:"available"`
}

type cartView struct {
	CartID           string         `json:"cart_id"`
	Items            []cartLineView `json:"items"`
	ItemsCount       int32          `json:"items_count"`
	SubtotalMinor    int64          `json:"subtotal_minor"`
	DeliveryFeeMinor int64          `json:"delivery_fee_minor"`
}

func newCartView(summary cart.Summary) cartView {
	view := cartView{
		CartID:           summary.Cart.ID,
		Items:            make([]cartLineView, 0, len(summary.Lines)),
		ItemsCount:       summary.ItemsCount,
		SubtotalMinor:    summary.SubtotalMinor,
		DeliveryFeeMinor: summary.DeliveryFeeMinor,
	}
	for _, line := range summary.Lines {
		view.Items = append(view.Items, cartLineView{
			ItemID:            line.ItemID,
			ProductID:         line.ProductID,
			Name:              line.Name,
			Slug:              line.Slug,
			SKU:               line.SKU,
			Brand:             line.Brand,
			PriceMinor:        line.PriceMinor,
			Quantity:          line.Quantity,
			SubtotalMinor:     line.SubtotalMinor(),
			AvailableQuantity: line.AvailableQuantity(),
			Available:         line.Available,
		})
	}
	return view
}

type orderItemView struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	ProductSKU    string `json:"product_sku"`
	ProductBrand  string `json:"product_brand,omitempty"`
	Quantity      int32  `json:"quantity"`
	PriceMinor    int64  `json:"price_minor"`
	SubtotalMinor int64  `json:"subtotal_minor"`
}

type orderView struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"order_number"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentMethod    string          `json:"payment_method"`
	DeliveryMethod   string          `json:"delivery_method"`
	DeliveryAddress  string          `json:"delivery_address,omitempty"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	CustomerPhone    string          `json:"customer_phone"`
	Notes            string          `json:"notes,omitempty"`
	SubtotalMinor    int64           `json:"subtotal_minor"`
	DeliveryFeeMinor int64           `json:"delivery_fee_minor"`
	TotalMinor       int64           `json:"total_minor"`
	Items            []orderItemView `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newOrderView(order domain.Order) orderView {
	view := orderView{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentMethod:    string(order.PaymentMethod),
		DeliveryMethod:   string(order.DeliveryMethod),
		DeliveryAddress:  order.DeliveryAddress,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		Notes:            order.Notes,
		SubtotalMinor:    order.SubtotalMinor,
		DeliveryFeeMinor: order.DeliveryFeeMinor,
		TotalMinor:       order.TotalMinor,
		Items:            make([]orderItemView, 0, len(order.Items)),
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderItemView{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductSKU:    item.ProductSKU,
			ProductBrand:  item.ProductBrand,
			Quantity:      item.Quantity,
			PriceMinor:    item.PriceMinor,
			SubtotalMinor: item.SubtotalMinor,
		})
	}
	return view
}

type orderListView struct {
	Orders []orderView `json:"orders"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

func newUserView(u domain.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
	}
}

type sessionView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type topSellerView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}

type statsView struct {
	OrdersTotal         int             `json:"orders_total"`
	OrdersPending       int             `json:"orders_pending"`
	CustomersTotal      int             `json:"customers_total"`
	ProductsAvailable   int             `json:"products_available"`
	MonthlyRevenueMinor int64           `json:"monthly_revenue_minor"`
	TopSellers          []topSellerView `json:"top_sellers"`
}

func newStatsView(stats domain.StoreStats) statsView {
	view := statsView{
		OrdersTotal:         stats.OrdersTotal,
		OrdersPending:       stats.OrdersPending,
		CustomersTotal:      stats.CustomersTotal,
		ProductsAvailable:   stats.ProductsAvailable,
		MonthlyRevenueMinor: stats.MonthlyRevenueMinor,
		TopSellers:          make([]topSellerView, 0, len(stats.TopSellers)),
	}
	for _, top := range stats.TopSellers {
		view.TopSellers = append(view.TopSellers, topSellerView{
			ProductID: top.ProductID,
			Name:      top.Name,
			Units:     top.Units,
		})
	}
	return view
}
