package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/pkg/config"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

// Collection names in the document store. Metric entries live in their own
// collections scoped by content kind and content id, the flat rendering of
// per-item sub-collections.
const (
	postsCollection         = "posts"
	answersCollection       = "answers"
	usersCollection         = "users"
	exercisesCollection     = "exercises"
	exerciseTypesCollection = "exercise-types"
	postExercisesCollection = "post-exercises"
	votesCollection         = "votes"
	likesCollection         = "likes"
	viewsCollection         = "views"
)

// MongoStore implements Store over a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongo connects to MongoDB and returns a store bound to the configured
// database.
func NewMongo(ctx context.Context, cfg *config.MongoConfig) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, mongoopts.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logging.GetLogger().Info("MongoDB connection established", zap.String("database", cfg.Database))

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logging.WithComponent("mongo-store"),
	}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Health checks store connectivity.
func (s *MongoStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// voteDocument is the persisted vote entry with its scope fields.
type voteDocument struct {
	ID          string               `bson:"id"`
	ContentKind models.ContentKind   `bson:"content-kind"`
	ContentID   string               `bson:"content-id"`
	VotedBy     string               `bson:"voted-by"`
	Status      models.VoteDirection `bson:"status"`
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.PostDocument, error) {
	var doc models.PostDocument
	err := s.db.Collection(postsCollection).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed fetching post %s: %w", id, err)
	}
	return &doc, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.PostDocument, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "modified-date", Value: 1}, {Key: "id", Value: 1}})
	return s.findPosts(ctx, bson.M{}, opts)
}

func (s *MongoStore) ListPostsByAuthor(ctx context.Context, userID string) ([]models.PostDocument, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "modified-date", Value: 1}, {Key: "id", Value: 1}})
	return s.findPosts(ctx, bson.M{"created-by": userID}, opts)
}

func (s *MongoStore) ListPostsAfter(ctx context.Context, after *PageMarker, limit int) ([]models.PostDocument, error) {
	filter := bson.M{}
	if after != nil {
		// Strictly after the marker in (modified-date, id) order.
		filter = bson.M{"$or": bson.A{
			bson.M{"modified-date": bson.M{"$gt": after.ModifiedAt}},
			bson.M{"modified-date": after.ModifiedAt, "id": bson.M{"$gt": after.ID}},
		}}
	}
	opts := mongoopts.Find().
		SetSort(bson.D{{Key: "modified-date", Value: 1}, {Key: "id", Value: 1}}).
		SetLimit(int64(limit))
	return s.findPosts(ctx, filter, opts)
}

func (s *MongoStore) findPosts(ctx context.Context, filter interface{}, opts *mongoopts.FindOptions) ([]models.PostDocument, error) {
	cursor, err := s.db.Collection(postsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed querying posts: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.PostDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: failed reading posts cursor: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) InsertPost(ctx context.Context, doc *models.PostDocument) error {
	if _, err := s.db.Collection(postsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting post: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := s.db.Collection(postsCollection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("store: failed updating post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.Collection(postsCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("store: failed deleting post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetAnswer(ctx context.Context, id string) (*models.AnswerDocument, error) {
	var doc models.AnswerDocument
	err := s.db.Collection(answersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed fetching answer %s: %w", id, err)
	}
	return &doc, nil
}

func (s *MongoStore) ListAnswersForPost(ctx context.Context, postID string) ([]models.AnswerDocument, error) {
	return s.findAnswers(ctx, bson.M{"exercise-post": postID})
}

func (s *MongoStore) ListAnswersByAuthor(ctx context.Context, userID string) ([]models.AnswerDocument, error) {
	return s.findAnswers(ctx, bson.M{"created-by": userID})
}

func (s *MongoStore) findAnswers(ctx context.Context, filter interface{}) ([]models.AnswerDocument, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "created-date", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := s.db.Collection(answersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed querying answers: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.AnswerDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: failed reading answers cursor: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) InsertAnswer(ctx context.Context, doc *models.AnswerDocument) error {
	if _, err := s.db.Collection(answersCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting answer: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateAnswer(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := s.db.Collection(answersCollection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("store: failed updating answer %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteAnswer(ctx context.Context, id string) error {
	res, err := s.db.Collection(answersCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("store: failed deleting answer %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CountVotes(ctx context.Context, kind models.ContentKind, contentID string, status models.VoteDirection) (int, error) {
	filter := bson.M{"content-kind": kind, "content-id": contentID, "status": status}
	n, err := s.db.Collection(votesCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("store: failed counting votes for %s/%s: %w", kind, contentID, err)
	}
	return int(n), nil
}

func (s *MongoStore) CountLikes(ctx context.Context, postID string) (int, error) {
	n, err := s.db.Collection(likesCollection).CountDocuments(ctx, bson.M{"content-id": postID})
	if err != nil {
		return 0, fmt.Errorf("store: failed counting likes for %s: %w", postID, err)
	}
	return int(n), nil
}

func (s *MongoStore) CountViews(ctx context.Context, postID string) (int, error) {
	n, err := s.db.Collection(viewsCollection).CountDocuments(ctx, bson.M{"content-id": postID})
	if err != nil {
		return 0, fmt.Errorf("store: failed counting views for %s: %w", postID, err)
	}
	return int(n), nil
}

func (s *MongoStore) GetVote(ctx context.Context, kind models.ContentKind, contentID, voterID string) (*models.VoteEntry, error) {
	filter := bson.M{"content-kind": kind, "content-id": contentID, "voted-by": voterID}
	var doc voteDocument
	err := s.db.Collection(votesCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed fetching vote for %s/%s: %w", kind, contentID, err)
	}
	return &models.VoteEntry{ID: doc.ID, VotedBy: doc.VotedBy, Status: doc.Status}, nil
}

func (s *MongoStore) InsertVote(ctx context.Context, kind models.ContentKind, contentID string, entry *models.VoteEntry) error {
	doc := voteDocument{
		ID:          entry.ID,
		ContentKind: kind,
		ContentID:   contentID,
		VotedBy:     entry.VotedBy,
		Status:      entry.Status,
	}
	if _, err := s.db.Collection(votesCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting vote for %s/%s: %w", kind, contentID, err)
	}
	return nil
}

func (s *MongoStore) UpdateVoteStatus(ctx context.Context, kind models.ContentKind, contentID, entryID string, expect, next models.VoteDirection) error {
	// Conditional on the currently stored status so concurrent votes by the
	// same user on different devices cannot silently overwrite each other.
	filter := bson.M{"content-kind": kind, "content-id": contentID, "id": entryID, "status": expect}
	res, err := s.db.Collection(votesCollection).UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": next}})
	if err != nil {
		return fmt.Errorf("store: failed updating vote %s: %w", entryID, err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (s *MongoStore) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	filter := bson.M{"content-id": postID, "liked-by": userID}
	n, err := s.db.Collection(likesCollection).CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("store: failed checking like for %s: %w", postID, err)
	}
	return n > 0, nil
}

func (s *MongoStore) InsertLike(ctx context.Context, postID, userID string) error {
	doc := bson.M{"content-id": postID, "liked-by": userID}
	if _, err := s.db.Collection(likesCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting like for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) DeleteLike(ctx context.Context, postID, userID string) error {
	filter := bson.M{"content-id": postID, "liked-by": userID}
	if _, err := s.db.Collection(likesCollection).DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("store: failed deleting like for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) InsertView(ctx context.Context, postID, userID string) error {
	doc := bson.M{"content-id": postID, "viewed-by": userID, "viewed-date": time.Now().UTC()}
	if _, err := s.db.Collection(viewsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting view for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) ListExerciseRefs(ctx context.Context, postID string) ([]models.ExerciseRef, error) {
	cursor, err := s.db.Collection(postExercisesCollection).Find(ctx, bson.M{"post-id": postID})
	if err != nil {
		return nil, fmt.Errorf("store: failed querying exercise refs for %s: %w", postID, err)
	}
	defer cursor.Close(ctx)

	refs := []models.ExerciseRef{}
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("store: failed reading exercise refs cursor: %w", err)
	}
	return refs, nil
}

func (s *MongoStore) InsertExerciseRef(ctx context.Context, postID, exerciseID string) error {
	doc := bson.M{"post-id": postID, "exercise": exerciseID}
	if _, err := s.db.Collection(postExercisesCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store: failed inserting exercise ref for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) DeleteExerciseRefs(ctx context.Context, postID string) error {
	if _, err := s.db.Collection(postExercisesCollection).DeleteMany(ctx, bson.M{"post-id": postID}); err != nil {
		return fmt.Errorf("store: failed deleting exercise refs for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) ListExercises(ctx context.Context) ([]models.ExerciseDocument, error) {
	cursor, err := s.db.Collection(exercisesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("store: failed querying exercises: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.ExerciseDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: failed reading exercises cursor: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) ListExerciseTypes(ctx context.Context) ([]models.ExerciseTypeDocument, error) {
	cursor, err := s.db.Collection(exerciseTypesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("store: failed querying exercise types: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.ExerciseTypeDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: failed reading exercise types cursor: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed fetching user %s: %w", id, err)
	}
	return &user, nil
}
