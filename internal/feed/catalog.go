package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/internal/cache"
	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

// CatalogResolver resolves exercise references to hydrated catalog entities.
// The catalog is append-mostly reference data, so the full id-to-exercise
// mapping is cached under a fixed key until explicitly invalidated.
type CatalogResolver struct {
	store  store.Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogResolver creates a catalog resolver with the given cache TTL.
func NewCatalogResolver(st store.Store, c cache.Cache, ttl time.Duration) *CatalogResolver {
	return &CatalogResolver{
		store:  st,
		cache:  c,
		ttl:    ttl,
		logger: logging.WithComponent("catalog"),
	}
}

// Catalog returns the id-to-exercise mapping, served from cache when
// possible.
func (r *CatalogResolver) Catalog(ctx context.Context) (map[string]models.Exercise, error) {
	if cached, err := r.cache.Get(ctx, cache.CatalogKey); err == nil {
		catalog := map[string]models.Exercise{}
		if err := json.Unmarshal([]byte(cached), &catalog); err == nil {
			return catalog, nil
		}
		// Undecodable entry: drop it and rebuild from the store.
		_ = r.cache.Delete(ctx, cache.CatalogKey)
	}

	catalog, err := r.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(catalog); err == nil {
		if err := r.cache.Set(ctx, cache.CatalogKey, string(raw), r.ttl); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			r.logger.Warn("failed caching exercise catalog", zap.Error(err))
		}
	}
	return catalog, nil
}

// buildCatalog joins the exercises collection with the exercise-types
// collection. An unrecognized type name is corruption, not a skippable row.
func (r *CatalogResolver) buildCatalog(ctx context.Context) (map[string]models.Exercise, error) {
	types, err := r.store.ListExerciseTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: failed loading exercise types: %w", err)
	}
	typesByID := make(map[string]models.ExerciseType, len(types))
	for _, t := range types {
		kind := models.ExerciseType(t.Name)
		if !kind.Valid() {
			return nil, &DataIntegrityError{ContentID: t.ID, Detail: fmt.Sprintf("unrecognized exercise type %q", t.Name)}
		}
		typesByID[t.ID] = kind
	}

	docs, err := r.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: failed loading exercises: %w", err)
	}
	catalog := make(map[string]models.Exercise, len(docs))
	for _, doc := range docs {
		kind, ok := typesByID[doc.Type]
		if !ok {
			return nil, &ResolutionError{ContentID: doc.ID, Field: "type", Err: store.ErrNotFound}
		}
		catalog[doc.ID] = models.Exercise{ID: doc.ID, Name: doc.Name, Type: kind}
	}
	return catalog, nil
}

// ExercisesForPost resolves a post's exercise references against the
// catalog, preserving junction order. A dangling reference is fatal.
func (r *CatalogResolver) ExercisesForPost(ctx context.Context, postID string) ([]models.Exercise, error) {
	refs, err := r.store.ListExerciseRefs(ctx, postID)
	if err != nil {
		return nil, &ResolutionError{ContentID: postID, Field: "exercises", Err: err}
	}
	if len(refs) == 0 {
		return []models.Exercise{}, nil
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	exercises := make([]models.Exercise, 0, len(refs))
	for _, ref := range refs {
		exercise, ok := catalog[ref.ExerciseID]
		if !ok {
			return nil, &ResolutionError{ContentID: postID, Field: "exercises", Err: fmt.Errorf("dangling exercise reference %s", ref.ExerciseID)}
		}
		exercises = append(exercises, exercise)
	}
	return exercises, nil
}

// Invalidate drops the cached catalog.
func (r *CatalogResolver) Invalidate(ctx context.Context) error {
	if err := r.cache.Delete(ctx, cache.CatalogKey); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		return err
	}
	return nil
}
