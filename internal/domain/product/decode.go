package product

import (
	"fmt"
	"strings"

	"storefront/internal/domain/common"
)

// Decode turns a raw product document into a Product.
//
// Normalization rules:
//   - price / stock / rating / discountPercentage accept numbers or numeric strings
//   - images[] falls back to a single "image" or "imageUrl" field
//   - discountPercentage defaults to 0, flags default to false
//
// A document without a name or with a negative price is a decode error.
func Decode(id string, raw map[string]any) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("%w: empty id", ErrDecode)
	}
	if raw == nil {
		return Product{}, fmt.Errorf("%w: %s: empty document", ErrDecode, id)
	}

	p := Product{
		ID:          id,
		Name:        common.FirstString(raw, "name", "title"),
		Description: common.AsString(raw["description"]),
		Brand:       common.AsString(raw["brand"]),
		Category:    common.AsString(raw["category"]),
		ARModelURL:  common.FirstString(raw, "arModelUrl", "modelUrl"),
	}
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: %s: missing name", ErrDecode, id)
	}

	if v, ok := common.AsFloat(raw["price"]); ok {
		p.Price = v
	}
	if p.Price < 0 {
		return Product{}, fmt.Errorf("%w: %s: negative price", ErrDecode, id)
	}
	if v, ok := common.AsFloat(raw["discountPercentage"]); ok && v > 0 {
		p.DiscountPercentage = v
	}
	if v, ok := common.AsInt(raw["stock"]); ok && v > 0 {
		p.Stock = v
	}
	if v, ok := common.AsFloat(raw["rating"]); ok {
		p.Rating = v
	}
	if v, ok := common.AsInt(raw["reviewCount"]); ok {
		p.ReviewCount = v
	}

	p.Images = common.AsStringSlice(raw["images"])
	if len(p.Images) == 0 {
		if single := common.FirstString(raw, "image", "imageUrl"); single != "" {
			p.Images = []string{single}
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	p.IsFeatured = common.AsBool(raw["isFeatured"])
	p.IsNewArrival = common.AsBool(raw["isNewArrival"])
	p.IsBestSeller = common.AsBool(raw["isBestSeller"])

	if t, ok := common.AsTime(raw["createdAt"]); ok {
		p.CreatedAt = t
	}
	if t, ok := common.AsTime(raw["updatedAt"]); ok {
		p.UpdatedAt = t
	}
	return p, nil
}

// Encode is the inverse of Decode for writes.
func Encode(p Product) map[string]any {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return map[string]any{
		"name":               p.Name,
		"description":        p.Description,
		"brand":              p.Brand,
		"category":           p.Category,
		"price":              p.Price,
		"discountPercentage": p.DiscountPercentage,
		"stock":              p.Stock,
		"images":             images,
		"rating":             p.Rating,
		"reviewCount":        p.ReviewCount,
		"isFeatured":         p.IsFeatured,
		"isNewArrival":       p.IsNewArrival,
		"isBestSeller":       p.IsBestSeller,
		"arModelUrl":         p.ARModelURL,
		"createdAt":          p.CreatedAt,
		"updatedAt":          p.UpdatedAt,
	}
}
