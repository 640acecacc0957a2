package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spotcheck/spotfeed/internal/cache"
	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
	"github.com/spotcheck/spotfeed/pkg/logging"
	"github.com/spotcheck/spotfeed/pkg/telemetry"
)

// MediaStore uploads and deletes binary assets by object name. It is the
// media/storage collaborator consumed by the write pipeline.
type MediaStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectName string) error
}

// Writer is the write pipeline for posts and answers. Every update or
// delete to a post id evicts that id from the read cache before the call
// returns.
type Writer struct {
	store  store.Store
	cache  cache.Cache
	media  MediaStore
	logger *zap.Logger
}

// NewWriter creates a write pipeline.
func NewWriter(st store.Store, c cache.Cache, media MediaStore) *Writer {
	return &Writer{
		store:  st,
		cache:  c,
		media:  media,
		logger: logging.WithComponent("writer"),
	}
}

// CreatePostInput carries the caller-supplied fields of a new post. The id
// and timestamps are assigned here, never by the caller.
type CreatePostInput struct {
	Title       string
	Description string
	CreatedBy   string
	ImagePath   string
	VideoPath   string
	ExerciseIDs []string
}

// CreatePost stores a new post document and its exercise references.
func (w *Writer) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostDocument, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("feed: post title is required")
	}
	if in.CreatedBy == "" {
		return nil, fmt.Errorf("feed: post creator is required")
	}

	now := time.Now().UTC()
	doc := &models.PostDocument{
		ID:           uuid.NewString(),
		CreatedBy:    in.CreatedBy,
		Title:        in.Title,
		Description:  in.Description,
		DateCreated:  now,
		DateModified: now,
		ImagePath:    in.ImagePath,
		VideoPath:    in.VideoPath,
	}
	if err := w.store.InsertPost(ctx, doc); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, exerciseID := range in.ExerciseIDs {
		exerciseID := exerciseID
		g.Go(func() error {
			return w.store.InsertExerciseRef(gctx, doc.ID, exerciseID)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("feed: failed linking exercises to post %s: %w", doc.ID, err)
	}

	w.logger.Info("post created", zap.String("post_id", doc.ID), zap.String("created_by", doc.CreatedBy))
	return doc, nil
}

// Immutable post fields that a partial merge may never touch.
var immutablePostFields = []string{"id", "created-by", "created-date"}

// UpdatePost merges the given fields into an existing post. The merge is
// partial, never a full overwrite, and the post's cache entry is evicted
// before the update is acknowledged.
func (w *Writer) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	for _, k := range immutablePostFields {
		delete(merged, k)
	}
	merged["modified-date"] = time.Now().UTC()

	if err := w.store.UpdatePost(ctx, id, merged); err != nil {
		return err
	}
	w.evictPost(ctx, id)
	return nil
}

// DeletePost cascades: all of the post's answers, its exercise references
// and its media object are deleted concurrently and awaited together, and
// only then is the post document removed. A crash mid-cascade leaves an
// orphaned but still visible post rather than dangling answers.
func (w *Writer) DeletePost(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "feed.delete_post")
	defer span.End()

	doc, err := w.store.GetPost(ctx, id)
	if err != nil {
		return err
	}

	answers, err := w.store.ListAnswersForPost(ctx, id)
	if err != nil {
		return fmt.Errorf("feed: failed listing answers for cascade delete of %s: %w", id, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, answer := range answers {
		answerID := answer.ID
		g.Go(func() error {
			return w.store.DeleteAnswer(gctx, answerID)
		})
	}
	g.Go(func() error {
		return w.store.DeleteExerciseRefs(gctx, id)
	})
	if doc.ImagePath != "" {
		g.Go(func() error {
			return w.media.Remove(gctx, doc.ImagePath)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("feed: cascade delete of post %s failed: %w", id, err)
	}

	if err := w.store.DeletePost(ctx, id); err != nil {
		return err
	}
	w.evictPost(ctx, id)

	w.logger.Info("post deleted", zap.String("post_id", id), zap.Int("answers", len(answers)))
	return nil
}

// WriteAnswerInput carries the caller-supplied fields of a new answer.
type WriteAnswerInput struct {
	PostID    string
	CreatedBy string
	Text      string
}

// WriteAnswer stores a new answer for a post.
func (w *Writer) WriteAnswer(ctx context.Context, in WriteAnswerInput) (*models.AnswerDocument, error) {
	if in.PostID == "" {
		return nil, fmt.Errorf("feed: answer post id is required")
	}
	if in.CreatedBy == "" {
		return nil, fmt.Errorf("feed: answer creator is required")
	}

	now := time.Now().UTC()
	doc := &models.AnswerDocument{
		ID:           uuid.NewString(),
		CreatedBy:    in.CreatedBy,
		PostID:       in.PostID,
		Text:         in.Text,
		DateCreated:  now,
		DateModified: now,
	}
	if err := w.store.InsertAnswer(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Immutable answer fields that a partial merge may never touch.
var immutableAnswerFields = []string{"id", "created-by", "exercise-post", "created-date"}

// UpdateAnswer merges the given fields into an existing answer.
func (w *Writer) UpdateAnswer(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	for _, k := range immutableAnswerFields {
		delete(merged, k)
	}
	merged["modified-date"] = time.Now().UTC()
	return w.store.UpdateAnswer(ctx, id, merged)
}

// DeleteAnswer removes one answer.
func (w *Writer) DeleteAnswer(ctx context.Context, id string) error {
	return w.store.DeleteAnswer(ctx, id)
}

// AttachImage streams an image to the media store and merges its object
// name into the post. Returns the object name.
func (w *Writer) AttachImage(ctx context.Context, postID, filename string, r io.Reader, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := fmt.Sprintf("posts/%s/%s%s", postID, uuid.NewString(), ext)

	if err := w.media.Upload(ctx, objectName, r, size, contentType); err != nil {
		return "", fmt.Errorf("feed: failed uploading image for post %s: %w", postID, err)
	}
	if err := w.UpdatePost(ctx, postID, map[string]interface{}{"image-path": objectName}); err != nil {
		return "", err
	}
	return objectName, nil
}

// SetLike toggles the user's like on a post. Returns the resulting state.
func (w *Writer) SetLike(ctx context.Context, postID, userID string) (bool, error) {
	liked, err := w.store.HasLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if liked {
		if err := w.store.DeleteLike(ctx, postID, userID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := w.store.InsertLike(ctx, postID, userID); err != nil {
		return false, err
	}
	return true, nil
}

// RecordView appends one view entry for a post.
func (w *Writer) RecordView(ctx context.Context, postID, viewerID string) error {
	return w.store.InsertView(ctx, postID, viewerID)
}

// ClearCache drops every memoized read model.
func (w *Writer) ClearCache(ctx context.Context) error {
	if err := w.cache.Clear(ctx); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		return err
	}
	return nil
}

func (w *Writer) evictPost(ctx context.Context, id string) {
	if err := w.cache.Delete(ctx, cache.PostKey(id)); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		w.logger.Warn("failed evicting post from cache", zap.String("post_id", id), zap.Error(err))
	}
}
