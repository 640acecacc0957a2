package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spotcheck/spotfeed/internal/cache"
	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
	"github.com/spotcheck/spotfeed/pkg/config"
	"github.com/spotcheck/spotfeed/pkg/logging"
	"github.com/spotcheck/spotfeed/pkg/telemetry"
)

// Page is one hydrated list result. Failed reports the items that were
// dropped by per-item resolution errors; an empty NextCursor means
// end-of-stream.
type Page struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Failed     []ItemFailure  `json:"failed,omitempty"`
}

// PostAggregator is the top-level read orchestrator: it loads posts, fans
// out the per-post sub-queries (metrics, exercises, viewer vote direction,
// answers) concurrently, and joins the results back to their source
// documents by identity.
type PostAggregator struct {
	store   store.Store
	cache   cache.Cache
	users   UserResolver
	metrics *MetricsResolver
	catalog *CatalogResolver
	answers *AnswerAggregator
	cfg     config.FeedConfig
	logger  *zap.Logger
}

// NewPostAggregator creates a post aggregator.
func NewPostAggregator(st store.Store, c cache.Cache, users UserResolver, metrics *MetricsResolver, catalog *CatalogResolver, answers *AnswerAggregator, cfg config.FeedConfig) *PostAggregator {
	return &PostAggregator{
		store:   st,
		cache:   c,
		users:   users,
		metrics: metrics,
		catalog: catalog,
		answers: answers,
		cfg:     cfg,
		logger:  logging.WithComponent("post-aggregator"),
	}
}

// GetPost returns a single post with its author resolved. Single-post reads
// are served from the read cache when possible; the cache is a pure memo,
// filled here and evicted by every write to the same id.
func (p *PostAggregator) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if cached, err := p.cache.Get(ctx, cache.PostKey(id)); err == nil {
		var post models.Post
		if err := json.Unmarshal([]byte(cached), &post); err == nil {
			return &post, nil
		}
		_ = p.cache.Delete(ctx, cache.PostKey(id))
	}

	doc, err := p.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("feed: failed fetching post %s: %w", id, err)
	}
	if doc.CreatedBy == "" {
		return nil, &ResolutionError{ContentID: id, Field: "created-by", Err: store.ErrNotFound}
	}

	author, err := p.users.UserByID(ctx, doc.CreatedBy)
	if err != nil {
		return nil, &ResolutionError{ContentID: id, Field: "created-by", Err: err}
	}

	post := mapPost(*doc)
	post.CreatedBy = author

	if raw, err := json.Marshal(post); err == nil {
		if err := p.cache.Set(ctx, cache.PostKey(id), string(raw), p.cfg.PostCacheTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			p.logger.Warn("failed caching post", zap.String("post_id", id), zap.Error(err))
		}
	}
	return post, nil
}

// ListPosts returns all posts fully hydrated for the given viewer, ordered
// by modification time ascending. List reads never consult the cache so the
// freshest ordering and counts come back.
func (p *PostAggregator) ListPosts(ctx context.Context, viewerID string) (*Page, error) {
	docs, err := p.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: failed listing posts: %w", err)
	}
	return p.hydratePage(ctx, docs, viewerID, "")
}

// ListPostsByAuthor returns all posts created by one user, hydrated for the
// given viewer.
func (p *PostAggregator) ListPostsByAuthor(ctx context.Context, userID, viewerID string) (*Page, error) {
	docs, err := p.store.ListPostsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feed: failed listing posts by user %s: %w", userID, err)
	}
	return p.hydratePage(ctx, docs, viewerID, "")
}

// ListPostsPage returns one page of hydrated posts resuming strictly after
// the supplied cursor. An empty result page signals end-of-stream.
func (p *PostAggregator) ListPostsPage(ctx context.Context, viewerID string, limit int, cursor string) (*Page, error) {
	if limit <= 0 || limit > p.cfg.PageSizeMax {
		limit = p.cfg.PageSizeMax
	}
	marker, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	docs, err := p.store.ListPostsAfter(ctx, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("feed: failed listing posts page: %w", err)
	}

	nextCursor := ""
	if len(docs) > 0 {
		last := docs[len(docs)-1]
		nextCursor = EncodeCursor(store.PageMarker{ModifiedAt: last.DateModified, ID: last.ID})
	}
	return p.hydratePage(ctx, docs, viewerID, nextCursor)
}

// hydratePage fans out the per-post request groups concurrently across all
// documents under one deadline, then compacts the slots back into document
// order. A failed item never aborts its siblings.
func (p *PostAggregator) hydratePage(ctx context.Context, docs []models.PostDocument, viewerID, nextCursor string) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.hydrate_page")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.FanoutTimeout)
	defer cancel()

	slots := make([]*models.Post, len(docs))
	failures := make([]*ItemFailure, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	for i := range docs {
		i, doc := i, docs[i]
		g.Go(func() error {
			post, err := p.hydratePost(gctx, doc, viewerID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("dropping post from batch",
					zap.String("post_id", doc.ID), zap.Error(err))
				failures[i] = &ItemFailure{PostID: doc.ID, Err: err}
				return nil
			}
			slots[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("feed: post hydration aborted: %w", err)
	}

	page := &Page{Posts: make([]*models.Post, 0, len(docs)), NextCursor: nextCursor}
	for i := range docs {
		if slots[i] != nil {
			page.Posts = append(page.Posts, slots[i])
		}
		if failures[i] != nil {
			page.Failed = append(page.Failed, *failures[i])
		}
	}
	return page, nil
}

// hydratePost joins one post document with its author, metric snapshot,
// exercises and answers, fetched as concurrent sub-requests behind a single
// barrier. A missing creator reference is fatal for the post; every other
// missing field already defaulted to its zero value at decode time.
func (p *PostAggregator) hydratePost(ctx context.Context, doc models.PostDocument, viewerID string) (*models.Post, error) {
	if doc.CreatedBy == "" {
		return nil, &ResolutionError{ContentID: doc.ID, Field: "created-by", Err: store.ErrNotFound}
	}

	post := mapPost(doc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		author, err := p.users.UserByID(gctx, doc.CreatedBy)
		if err != nil {
			return &ResolutionError{ContentID: doc.ID, Field: "created-by", Err: err}
		}
		post.CreatedBy = author
		return nil
	})
	g.Go(func() error {
		metrics, err := p.metrics.Snapshot(gctx, models.KindPost, doc.ID, viewerID)
		if err != nil {
			return err
		}
		post.Metrics = metrics
		return nil
	})
	g.Go(func() error {
		exercises, err := p.catalog.ExercisesForPost(gctx, doc.ID)
		if err != nil {
			return err
		}
		post.Exercises = exercises
		return nil
	})
	g.Go(func() error {
		answers, err := p.answers.AnswersForPost(gctx, doc.ID)
		if err != nil {
			return err
		}
		post.Answers = answers
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return post, nil
}

// mapPost carries the stored fields of a post document into the read model.
func mapPost(doc models.PostDocument) *models.Post {
	return &models.Post{
		ID:           doc.ID,
		Title:        doc.Title,
		Description:  doc.Description,
		DateCreated:  doc.DateCreated,
		DateModified: doc.DateModified,
		ImagePath:    doc.ImagePath,
		VideoPath:    doc.VideoPath,
		Exercises:    []models.Exercise{},
		Answers:      []*models.Answer{},
	}
}
