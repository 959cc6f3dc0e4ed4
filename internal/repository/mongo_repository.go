package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
)

// Collection names used by the document store backend.
const (
	UsersCollection      = "users"
	ActivitiesCollection = "activities"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d userDoc) model() *model.User {
	return &model.User{ID: d.ID, Email: d.Email, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt.UTC()}
}

type activityDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Type      string    `bson:"type"`
	Value     float64   `bson:"value"`
	Unit      string    `bson:"unit"`
	Carbon    float64   `bson:"carbon"`
	Timestamp time.Time `bson:"timestamp"`
}

func (d activityDoc) model() *model.Activity {
	return &model.Activity{
		ID:        d.ID,
		UserID:    d.UserID,
		Type:      d.Type,
		Value:     d.Value,
		Unit:      d.Unit,
		Carbon:    d.Carbon,
		Timestamp: d.Timestamp.UTC(),
	}
}

// EnsureMongoIndexes creates the unique email index and the owner index.
// Creating an index that already exists is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_users_email"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	_, err = db.Collection(ActivitiesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("idx_activities_user"),
	})
	if err != nil {
		return fmt.Errorf("create activities user index: %w", err)
	}
	return nil
}

// MongoUserRepo is the document store implementation of UserStore. It
// relies on the index created by EnsureMongoIndexes for email uniqueness.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection(UsersCollection)}
}

var _ UserStore = (*MongoUserRepo)(nil)

func (r *MongoUserRepo) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	doc := userDoc{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: NormalizeEmail(email)}})
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoUserRepo) List(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// MongoActivityRepo is the document store implementation of ActivityStore.
type MongoActivityRepo struct {
	coll *mongo.Collection
}

func NewMongoActivityRepo(db *mongo.Database) *MongoActivityRepo {
	return &MongoActivityRepo{coll: db.Collection(ActivitiesCollection)}
}

var _ ActivityStore = (*MongoActivityRepo)(nil)

func (r *MongoActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	a.ID = uuid.NewString()
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	// BSON dates carry millisecond precision.
	a.Timestamp = a.Timestamp.UTC().Truncate(time.Millisecond)

	doc := activityDoc{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      a.Type,
		Value:     a.Value,
		Unit:      a.Unit,
		Carbon:    a.Carbon,
		Timestamp: a.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *MongoActivityRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	out := make([]*model.Activity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
