package catalog

import (
	"testing"
	"time"
)

func TestStockCachePatchAndReplace(t *testing.T) {
	cache := NewStockCache()
	at := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	if cache.Fresh(at, time.Hour) {
		t.Fatalf("empty cache must not be fresh")
	}

	cache.Replace(sampleProducts(), []Category{{ID: 1, Name: "Beer"}}, at)
	cache.Patch(map[int64]int{1: 3})
	cache.Patch(map[int64]int{1: 1, 3: 5})

	products, categories, fetchedAt := cache.Snapshot()
	if got := products[0].Stock; got != 20 {
		t.Fatalf("expected patched stock 20, got %d", got)
	}
	if got := products[2].Stock; got != 0 {
		t.Fatalf("expected patched stock 0, got %d", got)
	}
	if !products[2].IsOutOfStock() {
		t.Fatalf("patched product should read as out of stock")
	}
	if len(categories) != 1 || !fetchedAt.Equal(at) {
		t.Fatalf("unexpected snapshot metadata: %v %v", categories, fetchedAt)
	}

	cache.Replace(sampleProducts(), nil, at.Add(time.Minute))
	products, _, _ = cache.Snapshot()
	if got := products[0].Stock; got != 24 {
		t.Fatalf("replace should drop patches, got %d", got)
	}
}

func TestStockCacheSnapshotIsCopy(t *testing.T) {
	cache := NewStockCache()
	cache.Replace(sampleProducts(), nil, time.Now())
	products, _, _ := cache.Snapshot()
	products[0].Stock = 1000

	again, _, _ := cache.Snapshot()
	if again[0].Stock != 24 {
		t.Fatalf("snapshot mutation leaked into cache")
	}
}

func TestFilterProducts(t *testing.T) {
	products := sampleProducts()
	cases := []struct {
		name   string
		filter ProductFilter
		want   []int64
	}{
		{name: "no filter", filter: ProductFilter{}, want: []int64{1, 2, 3}},
		{name: "search is case-insensitive", filter: ProductFilter{Search: "GUIN"}, want: []int64{2}},
		{name: "category", filter: ProductFilter{CategoryID: 2}, want: []int64{3}},
		{name: "brand and category", filter: ProductFilter{CategoryID: 1, BrandID: 1}, want: []int64{1}},
		{name: "no match", filter: ProductFilter{Search: "wine"}, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterProducts(products, tc.filter)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d products, got %d", len(tc.want), len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestStockThresholds(t *testing.T) {
	if !(Product{Stock: 5, MinStock: 5}).IsLowStock() {
		t.Fatalf("stock equal to minimum is low")
	}
	if (Product{Stock: 6, MinStock: 5}).IsLowStock() {
		t.Fatalf("stock above minimum is not low")
	}
	if (Product{Stock: -1}).IsOutOfStock() {
		t.Fatalf("only zero stock counts as out of stock")
	}
}
