package feed

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/internal/store"
)

// fakeStore is an in-memory store.Store double. It records every mutating
// operation in ops so tests can assert call ordering.
type fakeStore struct {
	mu            sync.Mutex
	posts         []models.PostDocument
	answers       []models.AnswerDocument
	users         map[string]models.User
	votes         []fakeVote
	likes         []fakeLike
	views         []fakeView
	refs          map[string][]models.ExerciseRef
	exercises     []models.ExerciseDocument
	exerciseTypes []models.ExerciseTypeDocument
	ops           []string
	userErr       map[string]error
	countErr      map[string]error

	// afterGetVote, when set, runs after each GetVote with the lock
	// released. Tests use it to interleave a concurrent writer.
	afterGetVote func()

	// The field maps passed to the most recent partial updates.
	lastPostUpdate   map[string]interface{}
	lastAnswerUpdate map[string]interface{}
}

type fakeVote struct {
	kind      models.ContentKind
	contentID string
	entry     models.VoteEntry
}

type fakeLike struct {
	postID string
	userID string
}

type fakeView struct {
	postID string
	userID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]models.User{},
		refs:     map[string][]models.ExerciseRef{},
		userErr:  map[string]error{},
		countErr: map[string]error{},
	}
}

func (f *fakeStore) record(op string) {
	f.ops = append(f.ops, op)
}

func (f *fakeStore) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *fakeStore) countOps(op string) int {
	n := 0
	for _, o := range f.opLog() {
		if o == op {
			n++
		}
	}
	return n
}

func (f *fakeStore) GetPost(_ context.Context, id string) (*models.PostDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.posts {
		if doc.ID == id {
			out := doc
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) sortedPosts() []models.PostDocument {
	out := make([]models.PostDocument, len(f.posts))
	copy(out, f.posts)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateModified.Equal(out[j].DateModified) {
			return out[i].DateModified.Before(out[j].DateModified)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeStore) ListPosts(_ context.Context) ([]models.PostDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedPosts(), nil
}

func (f *fakeStore) ListPostsByAuthor(_ context.Context, userID string) ([]models.PostDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PostDocument{}
	for _, doc := range f.sortedPosts() {
		if doc.CreatedBy == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPostsAfter(_ context.Context, after *store.PageMarker, limit int) ([]models.PostDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PostDocument{}
	for _, doc := range f.sortedPosts() {
		if after != nil {
			if doc.DateModified.Before(after.ModifiedAt) {
				continue
			}
			if doc.DateModified.Equal(after.ModifiedAt) && doc.ID <= after.ID {
				continue
			}
		}
		out = append(out, doc)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) InsertPost(_ context.Context, doc *models.PostDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-post:" + doc.ID)
	f.posts = append(f.posts, *doc)
	return nil
}

func (f *fakeStore) UpdatePost(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update-post:" + id)
	f.lastPostUpdate = fields
	for i := range f.posts {
		if f.posts[i].ID != id {
			continue
		}
		if v, ok := fields["title"].(string); ok {
			f.posts[i].Title = v
		}
		if v, ok := fields["description"].(string); ok {
			f.posts[i].Description = v
		}
		if v, ok := fields["image-path"].(string); ok {
			f.posts[i].ImagePath = v
		}
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-post:" + id)
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) GetAnswer(_ context.Context, id string) (*models.AnswerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.answers {
		if doc.ID == id {
			out := doc
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListAnswersForPost(_ context.Context, postID string) ([]models.AnswerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AnswerDocument{}
	for _, doc := range f.answers {
		if doc.PostID == postID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAnswersByAuthor(_ context.Context, userID string) ([]models.AnswerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AnswerDocument{}
	for _, doc := range f.answers {
		if doc.CreatedBy == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertAnswer(_ context.Context, doc *models.AnswerDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-answer:" + doc.ID)
	f.answers = append(f.answers, *doc)
	return nil
}

func (f *fakeStore) UpdateAnswer(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update-answer:" + id)
	f.lastAnswerUpdate = fields
	for i := range f.answers {
		if f.answers[i].ID != id {
			continue
		}
		if v, ok := fields["text"].(string); ok {
			f.answers[i].Text = v
		}
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteAnswer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-answer:" + id)
	for i := range f.answers {
		if f.answers[i].ID == id {
			f.answers = append(f.answers[:i], f.answers[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) CountVotes(_ context.Context, kind models.ContentKind, contentID string, status models.VoteDirection) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.countErr[contentID]; ok {
		return 0, err
	}
	n := 0
	for _, v := range f.votes {
		if v.kind == kind && v.contentID == contentID && v.entry.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountLikes(_ context.Context, postID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.likes {
		if l.postID == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountViews(_ context.Context, postID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.views {
		if v.postID == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetVote(_ context.Context, kind models.ContentKind, contentID, voterID string) (*models.VoteEntry, error) {
	f.mu.Lock()
	var found *models.VoteEntry
	for _, v := range f.votes {
		if v.kind == kind && v.contentID == contentID && v.entry.VotedBy == voterID {
			out := v.entry
			found = &out
			break
		}
	}
	hook := f.afterGetVote
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (f *fakeStore) InsertVote(_ context.Context, kind models.ContentKind, contentID string, entry *models.VoteEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-vote:" + contentID)
	f.votes = append(f.votes, fakeVote{kind: kind, contentID: contentID, entry: *entry})
	return nil
}

func (f *fakeStore) UpdateVoteStatus(_ context.Context, kind models.ContentKind, contentID, entryID string, expect, next models.VoteDirection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update-vote:" + contentID)
	for i := range f.votes {
		v := &f.votes[i]
		if v.kind == kind && v.contentID == contentID && v.entry.ID == entryID {
			if v.entry.Status != expect {
				return store.ErrConflict
			}
			v.entry.Status = next
			return nil
		}
	}
	return store.ErrConflict
}

func (f *fakeStore) HasLike(_ context.Context, postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.postID == postID && l.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertLike(_ context.Context, postID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-like:" + postID)
	f.likes = append(f.likes, fakeLike{postID: postID, userID: userID})
	return nil
}

func (f *fakeStore) DeleteLike(_ context.Context, postID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-like:" + postID)
	for i, l := range f.likes {
		if l.postID == postID && l.userID == userID {
			f.likes = append(f.likes[:i], f.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) InsertView(_ context.Context, postID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-view:" + postID)
	f.views = append(f.views, fakeView{postID: postID, userID: userID})
	return nil
}

func (f *fakeStore) ListExerciseRefs(_ context.Context, postID string) ([]models.ExerciseRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list-refs:" + postID)
	return append([]models.ExerciseRef{}, f.refs[postID]...), nil
}

func (f *fakeStore) InsertExerciseRef(_ context.Context, postID, exerciseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert-ref:" + postID)
	f.refs[postID] = append(f.refs[postID], models.ExerciseRef{ExerciseID: exerciseID})
	return nil
}

func (f *fakeStore) DeleteExerciseRefs(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-refs:" + postID)
	delete(f.refs, postID)
	return nil
}

func (f *fakeStore) ListExercises(_ context.Context) ([]models.ExerciseDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list-exercises")
	return append([]models.ExerciseDocument{}, f.exercises...), nil
}

func (f *fakeStore) ListExerciseTypes(_ context.Context) ([]models.ExerciseTypeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list-exercise-types")
	return append([]models.ExerciseTypeDocument{}, f.exerciseTypes...), nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.userErr[id]; ok {
		return nil, err
	}
	if user, ok := f.users[id]; ok {
		out := user
		return &out, nil
	}
	return nil, store.ErrNotFound
}

var _ store.Store = (*fakeStore)(nil)

// fakeUsers adapts fakeStore to the UserResolver interface.
type fakeUsers struct {
	store *fakeStore
}

func (u fakeUsers) UserByID(ctx context.Context, id string) (*models.User, error) {
	return u.store.GetUser(ctx, id)
}

// fakeMedia records uploaded and removed object names. Remove reports into
// the shared fakeStore op log so cascade ordering can be asserted alongside
// document deletes.
type fakeMedia struct {
	mu       sync.Mutex
	store    *fakeStore
	uploaded []string
	removed  []string
}

func (m *fakeMedia) Upload(_ context.Context, objectName string, _ io.Reader, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, objectName)
	return nil
}

func (m *fakeMedia) Remove(_ context.Context, objectName string) error {
	m.mu.Lock()
	m.removed = append(m.removed, objectName)
	m.mu.Unlock()
	if m.store != nil {
		m.store.mu.Lock()
		m.store.record("remove-media:" + objectName)
		m.store.mu.Unlock()
	}
	return nil
}

var _ MediaStore = (*fakeMedia)(nil)
