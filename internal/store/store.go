package store

import (
	"context"
	"errors"
	"time"

	"github.com/spotcheck/spotfeed/internal/models"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict is returned when a conditional write found the document
	// in a different state than expected.
	ErrConflict = errors.New("store: conditional write conflict")
)

// PageMarker identifies the last document of a previously fetched page.
// Pagination resumes strictly after it, ordered by modification time.
type PageMarker struct {
	ModifiedAt time.Time `json:"m"`
	ID         string    `json:"id"`
}

// Store is the document-store contract the aggregation layer is built
// against: hierarchical collections addressed by kind and document id,
// with equality filters, ordering by modification time, and sub-collection
// cardinality queries for metric entries.
type Store interface {
	// Posts.
	GetPost(ctx context.Context, id string) (*models.PostDocument, error)
	ListPosts(ctx context.Context) ([]models.PostDocument, error)
	ListPostsByAuthor(ctx context.Context, userID string) ([]models.PostDocument, error)
	ListPostsAfter(ctx context.Context, after *PageMarker, limit int) ([]models.PostDocument, error)
	InsertPost(ctx context.Context, doc *models.PostDocument) error
	UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error
	DeletePost(ctx context.Context, id string) error

	// Answers.
	GetAnswer(ctx context.Context, id string) (*models.AnswerDocument, error)
	ListAnswersForPost(ctx context.Context, postID string) ([]models.AnswerDocument, error)
	ListAnswersByAuthor(ctx context.Context, userID string) ([]models.AnswerDocument, error)
	InsertAnswer(ctx context.Context, doc *models.AnswerDocument) error
	UpdateAnswer(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteAnswer(ctx context.Context, id string) error

	// Metric sub-collections, scoped by (content kind, content id).
	CountVotes(ctx context.Context, kind models.ContentKind, contentID string, status models.VoteDirection) (int, error)
	CountLikes(ctx context.Context, postID string) (int, error)
	CountViews(ctx context.Context, postID string) (int, error)

	// Vote ledger entries. GetVote returns ErrNotFound when the voter has
	// no entry; UpdateVoteStatus is a compare-and-swap on the stored status
	// and returns ErrConflict on a lost race.
	GetVote(ctx context.Context, kind models.ContentKind, contentID, voterID string) (*models.VoteEntry, error)
	InsertVote(ctx context.Context, kind models.ContentKind, contentID string, entry *models.VoteEntry) error
	UpdateVoteStatus(ctx context.Context, kind models.ContentKind, contentID, entryID string, expect, next models.VoteDirection) error

	// Likes and views.
	HasLike(ctx context.Context, postID, userID string) (bool, error)
	InsertLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error
	InsertView(ctx context.Context, postID, userID string) error

	// Exercise catalog and the post-exercises junction.
	ListExerciseRefs(ctx context.Context, postID string) ([]models.ExerciseRef, error)
	InsertExerciseRef(ctx context.Context, postID, exerciseID string) error
	DeleteExerciseRefs(ctx context.Context, postID string) error
	ListExercises(ctx context.Context) ([]models.ExerciseDocument, error)
	ListExerciseTypes(ctx context.Context) ([]models.ExerciseTypeDocument, error)

	// Users.
	GetUser(ctx context.Context, id string) (*models.User, error)
}
