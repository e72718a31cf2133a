package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories()
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.URL.Query().Get("category"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]brandView, 0, len(brands))
	for _, b := range brands {
		views = append(views, brandView{ID: b.ID, Name: b.Name, Slug: b.Slug})
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleProductList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, total, err := h.products.List(filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	respondJSON(w, http.StatusOK, productListView{
		Products: views,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

func (h *Handler) handleProductGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Find(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(product))
}

const defaultSimilarLimit = 4

// handleProductSimilar подбирает товары той же категории, что и запрошенный,
// исключая его самого.
func (h *Handler) handleProductSimilar(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Find(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	limit, err := parseIntParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// Товару без категории подбирать не из чего.
	if product.CategoryID == "" {
		respondJSON(w, http.StatusOK, []productView{})
		return
	}

	// Берём на один больше: сам товар попадает в выборку и отбрасывается.
	candidates, _, err := h.products.List(domain.ProductFilter{
		CategoryID: product.CategoryID,
		SortBy:     domain.ProductSortCreatedAt,
		SortDesc:   true,
		Limit:      limit + 1,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	views := make([]productView, 0, limit)
	for _, p := range candidates {
		if p.ID == product.ID {
			continue
		}
		if len(views) == limit {
			break
		}
		views = append(views, newProductView(p))
	}
	respondJSON(w, http.StatusOK, views)
}

// parseProductFilter собирает фильтр каталога из query-параметров.
func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		CategorySlug: query.Get("category"),
		Search:       strings.TrimSpace(query.Get("search")),
		Limit:        defaultPageSize,
	}

	if raw := query.Get("brands"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.BrandIDs = append(filter.BrandIDs, id)
			}
		}
	}

	var err error
	if filter.PriceMinMinor, err = parseInt64Param(query.Get("price_min"), "price_min"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.PriceMaxMinor, err = parseInt64Param(query.Get("price_max"), "price_max"); err != nil {
		return domain.ProductFilter{}, err
	}

	filter.InStockOnly = query.Get("in_stock") == "true"
	filter.FeaturedOnly = query.Get("featured") == "true"
	filter.NewOnly = query.Get("new") == "true"

	switch sort := query.Get("sort"); sort {
	case "", "created_at":
		filter.SortBy = domain.ProductSortCreatedAt
	case "price":
		filter.SortBy = domain.ProductSortPrice
	case "name":
		filter.SortBy = domain.ProductSortName
	default:
		return domain.ProductFilter{}, errInvalidParam("sort", sort)
	}
	filter.SortDesc = query.Get("order") == "desc"

	limit, err := parseIntParam(query.Get("limit"), "limit")
	if err != nil {
		return domain.ProductFilter{}, err
	}
	if limit > 0 {
		filter.Limit = limit
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	offset, err := parseIntParam(query.Get("offset"), "offset")
	if err != nil {
		return domain.ProductFilter{}, err
	}
	filter.Offset = offset

	return filter, nil
}

func parseIntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errInvalidParam(name, raw)
	}
	return value, nil
}

func parseInt64Param(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, errInvalidParam(name, raw)
	}
	return value, nil
}

type paramError struct {
	name  string
	value string
}

func (e paramError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + e.name
}

func errInvalidParam(name, value string) error {
	return paramError{name: name, value: value}
}
