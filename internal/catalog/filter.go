package catalog

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// Sort orders understood by the backend and by Filter.Apply.
const (
	SortNone      = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
)

// AllCategories matches every category.
const AllCategories = "All"

// Filter narrows and orders a product listing. Prices are in paise.
type Filter struct {
	Category    string
	MinPrice    *int64
	MaxPrice    *int64
	InStockOnly bool
	Search      string
	Sort        string
}

// ParseFilter reads a filter from shop page query parameters. Prices are
// given in rupees.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     q.Get("sort_by"),
	}

	var err error
	if f.MinPrice, err = parseRupees(q, "min_price"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseRupees(q, "max_price"); err != nil {
		return Filter{}, err
	}
	if v := q.Get("in_stock"); v != "" {
		if f.InStockOnly, err = strconv.ParseBool(v); err != nil {
			return Filter{}, apperrors.InvalidInput("in_stock must be a boolean")
		}
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseRupees(q url.Values, name string) (*int64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, apperrors.InvalidInput(name + " must be a non-negative number")
	}
	paise := domain.Paise(f)
	return &paise, nil
}

// Validate checks the sort order and the price range.
func (f Filter) Validate() error {
	switch f.Sort {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNameAsc:
	default:
		return apperrors.InvalidInput("sort_by must be one of price_asc, price_desc, name_asc")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperrors.InvalidInput("min_price must not exceed max_price")
	}
	return nil
}

// Query encodes the parts of f the backend filters on.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Category != "" && f.Category != AllCategories {
		q.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		q.Set("min_price", rupees(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", rupees(*f.MaxPrice))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Sort != SortNone {
		q.Set("sort_by", f.Sort)
	}
	return q
}

func rupees(paise int64) string {
	return strconv.FormatFloat(float64(paise)/100, 'f', -1, 64)
}

// Match reports whether p passes every predicate of f.
func (f Filter) Match(p domain.Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			return false
		}
	}
	return true
}

// Apply returns the matching products in f's order. The input is not
// modified.
func (f Filter) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}
	return out
}
