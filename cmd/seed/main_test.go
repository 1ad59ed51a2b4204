package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalog(t *testing.T) {
	cats, products, err := buildCatalog(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Len(t, products, len(seedProducts))
	assert.Len(t, cats, 4)

	ids := map[string]bool{}
	for _, c := range cats {
		ids[c.ID] = true
	}
	for _, p := range products {
		assert.True(t, ids[p.Category], "category %q of %s is seeded", p.Category, p.ID)
		assert.NotEmpty(t, p.Images)
	}
	assert.Equal(t, "home-kitchen", products[5].Category)
	assert.Equal(t, "wireless-headphones", products[0].ID)
}
