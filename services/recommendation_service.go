package services

import (
	"context"
	"sort"
	"strings"

	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

// Recommender suggests item names that go well with the cart.
type Recommender interface {
	Recommend(ctx context.Context, cartItemNames []string) ([]string, error)
}

// RecommendationCache stores recommendation lists keyed by cart contents.
type RecommendationCache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, recs []string) error
}

// FilterRecommendations keeps names that are on the available menu and not
// already in the cart. Matching ignores case and surrounding space; the
// catalog spelling is returned. Order is kept and duplicates dropped.
func FilterRecommendations(recs, cartNames []string, catalog []models.MenuItem) []models.MenuItem {
	inCart := make(map[string]bool, len(cartNames))
	for _, name := range cartNames {
		inCart[normalizeName(name)] = true
	}

	menu := make(map[string]models.MenuItem, len(catalog))
	for _, item := range catalog {
		if item.IsAvailable {
			menu[normalizeName(item.Name)] = item
		}
	}

	seen := make(map[string]bool)
	out := make([]models.MenuItem, 0, len(recs))
	for _, rec := range recs {
		key := normalizeName(rec)
		if key == "" || inCart[key] || seen[key] {
			continue
		}
		item, ok := menu[key]
		if !ok {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// cacheKey is independent of cart order.
func cacheKey(cartItemNames []string) string {
	names := make([]string, len(cartItemNames))
	for i, n := range cartItemNames {
		names[i] = normalizeName(n)
	}
	sort.Strings(names)
	return "recommendations:" + strings.Join(names, "|")
}

// CachedRecommender answers from Cache when it can. Cache failures fall
// through to Next.
type CachedRecommender struct {
	Next  Recommender
	Cache RecommendationCache
}

func (r *CachedRecommender) Recommend(ctx context.Context, cartItemNames []string) ([]string, error) {
	key := cacheKey(cartItemNames)

	recs, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		utils.ErrorLogger.Printf("Error reading recommendation cache: %v", err)
	} else if ok {
		return recs, nil
	}

	recs, err = r.Next.Recommend(ctx, cartItemNames)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, recs); err != nil {
		utils.ErrorLogger.Printf("Error writing recommendation cache: %v", err)
	}
	return recs, nil
}
