// internal/domain/product/entity.go
package product

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("product: not found")
	ErrDecode       = errors.New("product: decode failed")
	ErrInvalidName  = errors.New("product: invalid name")
	ErrInvalidPrice = errors.New("product: invalid price")
	ErrInvalidStock = errors.New("product: invalid stock")
)

// Product is a catalog entry (collection: products).
// Owned by admin writers; read-only for shoppers.
type Product struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Brand              string    `json:"brand,omitempty"`
	Category           string    `json:"category,omitempty"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Stock              int       `json:"stock"`
	Images             []string  `json:"images"`
	Rating             float64   `json:"rating"`
	ReviewCount        int       `json:"reviewCount"`
	IsFeatured         bool      `json:"isFeatured"`
	IsNewArrival       bool      `json:"isNewArrival"`
	IsBestSeller       bool      `json:"isBestSeller"`
	ARModelURL         string    `json:"arModelUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FinalPrice applies the discount percentage and rounds to cents.
func (p Product) FinalPrice() float64 {
	if p.DiscountPercentage <= 0 {
		return decimal.NewFromFloat(p.Price).Round(2).InexactFloat64()
	}
	pct := decimal.NewFromFloat(p.DiscountPercentage)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	factor := decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
	return decimal.NewFromFloat(p.Price).Mul(factor).Round(2).InexactFloat64()
}

func (p Product) InStock() bool { return p.Stock > 0 }

// PrimaryImage returns the first image url or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Validate checks writer-side invariants.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// Patch is a partial update. A nil field means "no change".
type Patch struct {
	Name               *string   `json:"name,omitempty"`
	Description        *string   `json:"description,omitempty"`
	Brand              *string   `json:"brand,omitempty"`
	Category           *string   `json:"category,omitempty"`
	Price              *float64  `json:"price,omitempty"`
	DiscountPercentage *float64  `json:"discountPercentage,omitempty"`
	Stock              *int      `json:"stock,omitempty"`
	Images             *[]string `json:"images,omitempty"`
	IsFeatured         *bool     `json:"isFeatured,omitempty"`
	IsNewArrival       *bool     `json:"isNewArrival,omitempty"`
	IsBestSeller       *bool     `json:"isBestSeller,omitempty"`
	ARModelURL         *string   `json:"arModelUrl,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pt Patch) Apply(p Product, now time.Time) (Product, error) {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = strings.TrimSpace(*pt.Description)
	}
	if pt.Brand != nil {
		p.Brand = strings.TrimSpace(*pt.Brand)
	}
	if pt.Category != nil {
		p.Category = strings.TrimSpace(*pt.Category)
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.DiscountPercentage != nil {
		p.DiscountPercentage = *pt.DiscountPercentage
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	if pt.Images != nil {
		p.Images = normalizeImages(*pt.Images)
	}
	if pt.IsFeatured != nil {
		p.IsFeatured = *pt.IsFeatured
	}
	if pt.IsNewArrival != nil {
		p.IsNewArrival = *pt.IsNewArrival
	}
	if pt.IsBestSeller != nil {
		p.IsBestSeller = *pt.IsBestSeller
	}
	if pt.ARModelURL != nil {
		p.ARModelURL = strings.TrimSpace(*pt.ARModelURL)
	}
	p.UpdatedAt = now.UTC()
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ----------------------------
// Filter / sort (client-side over a live row set)
// ----------------------------

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

type Filter struct {
	Category    string
	Featured    bool
	NewArrival  bool
	BestSeller  bool
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	MaxStock    *int // admin low-stock view
	Sort        SortKey
	Limit       int
}

// Match reports whether p passes every non-zero condition of f.
func (f Filter) Match(p Product) bool {
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, p.Category) {
		return false
	}
	if f.Featured && !p.IsFeatured {
		return false
	}
	if f.NewArrival && !p.IsNewArrival {
		return false
	}
	if f.BestSeller && !p.IsBestSeller {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	if f.MaxStock != nil && p.Stock > *f.MaxStock {
		return false
	}
	price := p.FinalPrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and limits rows. rows is not modified.
func (f Filter) Apply(rows []Product) []Product {
	out := make([]Product, 0, len(rows))
	for _, p := range rows {
		if f.Match(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].FinalPrice() < out[j].FinalPrice() })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].FinalPrice() > out[j].FinalPrice() })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func normalizeImages(src []string) []string {
	out := make([]string, 0, len(src))
	for _, s := range src {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
