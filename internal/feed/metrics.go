package feed

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
)

// MetricsResolver counts votes, likes and views for content items by
// querying the metric sub-collections scoped to each item. Counts are
// volatile, so nothing is cached at this layer; callers batch the
// independent count queries concurrently.
type MetricsResolver struct {
	store store.Store
}

// NewMetricsResolver creates a metrics resolver.
func NewMetricsResolver(st store.Store) *MetricsResolver {
	return &MetricsResolver{store: st}
}

// VoteCounts returns the up and down vote counts for a content item, fetched
// concurrently.
func (r *MetricsResolver) VoteCounts(ctx context.Context, kind models.ContentKind, contentID string) (up, down int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.store.CountVotes(gctx, kind, contentID, models.VoteUp)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "upvotes", Err: err}
		}
		up = n
		return nil
	})
	g.Go(func() error {
		n, err := r.store.CountVotes(gctx, kind, contentID, models.VoteDown)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "downvotes", Err: err}
		}
		down = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return up, down, nil
}

// Snapshot builds the full metric snapshot of a post for one viewer: the
// four counts plus the viewer's current vote direction, all fetched as
// concurrent, independent requests.
func (r *MetricsResolver) Snapshot(ctx context.Context, kind models.ContentKind, contentID, viewerID string) (models.Metrics, error) {
	var m models.Metrics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.store.CountVotes(gctx, kind, contentID, models.VoteUp)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "upvotes", Err: err}
		}
		m.Upvotes = n
		return nil
	})
	g.Go(func() error {
		n, err := r.store.CountVotes(gctx, kind, contentID, models.VoteDown)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "downvotes", Err: err}
		}
		m.Downvotes = n
		return nil
	})
	g.Go(func() error {
		n, err := r.store.CountLikes(gctx, contentID)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "likes", Err: err}
		}
		m.Likes = n
		return nil
	})
	g.Go(func() error {
		n, err := r.store.CountViews(gctx, contentID)
		if err != nil {
			return &ResolutionError{ContentID: contentID, Field: "views", Err: err}
		}
		m.Views = n
		return nil
	})
	g.Go(func() error {
		direction, err := r.VoteDirectionFor(gctx, kind, contentID, viewerID)
		if err != nil {
			return err
		}
		m.CurrentVoteDirection = direction
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Metrics{}, err
	}
	return m, nil
}

// VoteDirectionFor returns the viewer's current vote direction on a content
// item. No entry means Neutral; a stored status outside the recognized set
// is a corruption signal.
func (r *MetricsResolver) VoteDirectionFor(ctx context.Context, kind models.ContentKind, contentID, viewerID string) (models.VoteDirection, error) {
	if viewerID == "" {
		return models.VoteNeutral, nil
	}
	entry, err := r.store.GetVote(ctx, kind, contentID, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.VoteNeutral, nil
		}
		return models.VoteNeutral, &ResolutionError{ContentID: contentID, Field: "vote-direction", Err: err}
	}
	if !entry.Status.Valid() {
		return models.VoteNeutral, &DataIntegrityError{ContentID: contentID, Detail: "unrecognized vote status"}
	}
	return entry.Status, nil
}
