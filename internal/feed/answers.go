package feed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
)

// UserResolver supplies hydrated user objects by id. It is the read side of
// the user/auth collaborator.
type UserResolver interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// AnswerAggregator loads answers and joins each with its author and vote
// counts. All sub-requests for one answer set fan out concurrently and meet
// at a single barrier; each request writes into the slot of the document it
// was issued for, so the output order is exactly the store's fetch order no
// matter how completions interleave.
type AnswerAggregator struct {
	store   store.Store
	users   UserResolver
	metrics *MetricsResolver
}

// NewAnswerAggregator creates an answer aggregator.
func NewAnswerAggregator(st store.Store, users UserResolver, metrics *MetricsResolver) *AnswerAggregator {
	return &AnswerAggregator{store: st, users: users, metrics: metrics}
}

// AnswersForPost returns the hydrated answers of one post in fetch order.
func (a *AnswerAggregator) AnswersForPost(ctx context.Context, postID string) ([]*models.Answer, error) {
	docs, err := a.store.ListAnswersForPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("feed: failed listing answers for post %s: %w", postID, err)
	}

	answers := newAnswerSlots(docs)
	g, gctx := errgroup.WithContext(ctx)
	for i := range docs {
		doc := docs[i]
		answer := answers[i]
		g.Go(func() error {
			author, err := a.users.UserByID(gctx, doc.CreatedBy)
			if err != nil {
				return &ResolutionError{ContentID: doc.ID, Field: "created-by", Err: err}
			}
			answer.CreatedBy = author
			return nil
		})
		g.Go(func() error {
			up, down, err := a.metrics.VoteCounts(gctx, models.KindAnswer, doc.ID)
			if err != nil {
				return err
			}
			answer.Metrics.Upvotes = up
			answer.Metrics.Downvotes = down
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

// AnswersByUser returns all answers authored by one user in fetch order.
// The author is resolved once and shared across the set.
func (a *AnswerAggregator) AnswersByUser(ctx context.Context, userID string) ([]*models.Answer, error) {
	docs, err := a.store.ListAnswersByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feed: failed listing answers by user %s: %w", userID, err)
	}

	author, err := a.users.UserByID(ctx, userID)
	if err != nil {
		return nil, &ResolutionError{ContentID: userID, Field: "created-by", Err: err}
	}

	answers := newAnswerSlots(docs)
	g, gctx := errgroup.WithContext(ctx)
	for i := range docs {
		doc := docs[i]
		answer := answers[i]
		answer.CreatedBy = author
		g.Go(func() error {
			up, down, err := a.metrics.VoteCounts(gctx, models.KindAnswer, doc.ID)
			if err != nil {
				return err
			}
			answer.Metrics.Upvotes = up
			answer.Metrics.Downvotes = down
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

// newAnswerSlots pre-allocates one hydrated answer per source document,
// carrying over the document fields. Concurrent resolvers fill in the rest.
func newAnswerSlots(docs []models.AnswerDocument) []*models.Answer {
	answers := make([]*models.Answer, len(docs))
	for i, doc := range docs {
		answers[i] = &models.Answer{
			ID:           doc.ID,
			PostID:       doc.PostID,
			Text:         doc.Text,
			DateCreated:  doc.DateCreated,
			DateModified: doc.DateModified,
		}
	}
	return answers
}
