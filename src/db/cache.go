package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"

	"homeledger-server/src/models"
)

// Category listings are read on nearly every page and the table is tiny, so
// they live in an in-process cache keyed by kind ("" for the full list).
// Tracked keys let the admin clear endpoint drop everything at once.
var (
	categoryCache *ristretto.Cache
	categoryKeys  = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	categoryCache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

func GetCachedCategories(kind string) ([]models.Category, bool) {
	if categoryCache == nil {
		return nil, false
	}
	value, ok := categoryCache.Get("categories:" + kind)
	if !ok {
		return nil, false
	}
	categories, ok := value.([]models.Category)
	return categories, ok
}

func SetCachedCategories(kind string, categories []models.Category) {
	if categoryCache == nil {
		return
	}
	key := "categories:" + kind
	categoryKeys.Lock()
	categoryKeys.m[key] = struct{}{}
	categoryKeys.Unlock()
	categoryCache.Set(key, categories, 1)
}

func ClearCategoryCache() {
	if categoryCache == nil {
		return
	}
	categoryKeys.Lock()
	for key := range categoryKeys.m {
		categoryCache.Del(key)
	}
	categoryKeys.m = make(map[string]struct{})
	categoryKeys.Unlock()
}

// WaitCache flushes pending cache writes. Tests use it; request paths never
// need to.
func WaitCache() {
	if categoryCache != nil {
		categoryCache.Wait()
	}
}
