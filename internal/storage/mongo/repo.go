package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elitestay/internal/domain"
)

const (
	propertiesColl = "properties"
	bookingsColl   = "bookings"
	usersColl      = "users"
)

// Repo keeps properties, bookings and users as one document each.
type Repo struct {
	properties *mongo.Collection
	bookings   *mongo.Collection
	users      *mongo.Collection
}

func New(db *mongo.Database) *Repo {
	return &Repo{
		properties: db.Collection(propertiesColl),
		bookings:   db.Collection(bookingsColl),
		users:      db.Collection(usersColl),
	}
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return c, nil
}

// EnsureIndexes creates the unique email index and the per-user booking index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := r.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("bookings index: %w", err)
	}
	return nil
}

func (r *Repo) ListProperties(ctx context.Context) ([]domain.Property, error) {
	cur, err := r.properties.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.Property, 0, 64)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetProperty(ctx context.Context, id domain.PropertyID) (domain.Property, error) {
	var p domain.Property
	err := r.properties.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.properties.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	return err
}

func (r *Repo) AppendBooking(ctx context.Context, b domain.BookingRecord) error {
	b.CreatedAt = b.CreatedAt.UTC()
	_, err := r.bookings.InsertOne(ctx, b)
	return mapDup(err)
}

func (r *Repo) ListBookings(ctx context.Context, userID string) ([]domain.BookingRecord, error) {
	cur, err := r.bookings.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.BookingRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.users.InsertOne(ctx, u)
	return mapDup(err)
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"_id": id})
}

func (r *Repo) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := r.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func mapDup(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}
