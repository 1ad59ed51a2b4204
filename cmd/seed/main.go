// cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	catdom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
	appcfg "storefront/internal/infra/config"
	firestoreinfra "storefront/internal/infra/firestore"
)

func main() {
	overwrite := flag.Bool("overwrite", false, "replace existing documents instead of merging")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := appcfg.Load()
	cw, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		log.Fatalf("[seed] firestore: %v", err)
	}
	defer cw.Close()

	now := time.Now().UTC()
	cats, products, err := buildCatalog(now)
	if err != nil {
		log.Fatalf("[seed] catalog: %v", err)
	}

	var opts []firestore.SetOption
	if !*overwrite {
		opts = append(opts, firestore.MergeAll)
	}

	bw := cw.Client.BulkWriter(ctx)
	for _, c := range cats {
		if _, err := bw.Set(cw.Client.Collection("categories").Doc(c.ID), map[string]any{
			"id":        c.ID,
			"name":      c.Name,
			"createdAt": c.CreatedAt,
		}, opts...); err != nil {
			log.Fatalf("[seed] category %s: %v", c.ID, err)
		}
	}
	for _, p := range products {
		if _, err := bw.Set(cw.Client.Collection("products").Doc(p.ID), productdom.Encode(p), opts...); err != nil {
			log.Fatalf("[seed] product %s: %v", p.ID, err)
		}
	}
	bw.End()

	log.Printf("[seed] wrote %d categories, %d products (project=%s)", len(cats), len(products), cw.ProjectID)
}

type seedProduct struct {
	name, brand, category string
	price, discount       float64
	stock                 int
	featured, isNew, best bool
}

var seedProducts = []seedProduct{
	{name: "Wireless Headphones", brand: "Sonic", category: "Electronics", price: 129.99, discount: 10, stock: 25, featured: true},
	{name: "Smart Watch", brand: "Pulse", category: "Electronics", price: 199, stock: 12, isNew: true},
	{name: "Portable Speaker", brand: "Sonic", category: "Electronics", price: 59.5, stock: 3, best: true},
	{name: "Linen Shirt", brand: "Weave", category: "Fashion", price: 45, discount: 20, stock: 40},
	{name: "Leather Sneakers", brand: "Stride", category: "Fashion", price: 89, stock: 0, best: true},
	{name: "Ceramic Mug Set", brand: "Kiln", category: "Home & Kitchen", price: 24, stock: 60, isNew: true},
	{name: "Cast Iron Skillet", brand: "Forge", category: "Home & Kitchen", price: 39.9, stock: 18, featured: true},
	{name: "Yoga Mat", brand: "Flow", category: "Sports & Outdoors", price: 29, discount: 15, stock: 30},
}

// buildCatalog derives category slugs and product ids from the names so reruns hit the same documents.
func buildCatalog(now time.Time) ([]catdom.Category, []productdom.Product, error) {
	seen := map[string]bool{}
	var cats []catdom.Category
	var products []productdom.Product

	for _, s := range seedProducts {
		c, err := catdom.New(s.category, now)
		if err != nil {
			return nil, nil, err
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			cats = append(cats, c)
		}

		p := productdom.Product{
			ID:                 catdom.Slugify(s.name),
			Name:               s.name,
			Brand:              s.brand,
			Category:           c.ID,
			Price:              s.price,
			DiscountPercentage: s.discount,
			Stock:              s.stock,
			Images:             []string{"https://picsum.photos/seed/" + strings.ReplaceAll(catdom.Slugify(s.name), "-", "") + "/600"},
			IsFeatured:         s.featured,
			IsNewArrival:       s.isNew,
			IsBestSeller:       s.best,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
		products = append(products, p)
	}
	return cats, products, nil
}
