package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

const collectionProviderStatus = "provider_status"

type ProviderStatusRepository struct {
	col *mongo.Collection
}

func NewProviderStatusRepository(db *mongo.Database) *ProviderStatusRepository {
	return &ProviderStatusRepository{col: db.Collection(collectionProviderStatus)}
}

func (r *ProviderStatusRepository) FindByUserID(ctx context.Context, userID int64) (*domain.ProviderStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.ProviderStatus
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProviderStatusNotFound
		}
		return nil, fmt.Errorf("find provider status: %w", err)
	}
	return &s, nil
}

// Upsert finds or creates the row for userID. Two concurrent inserts race on
// the unique index; the loser retries once as a plain update.
func (r *ProviderStatusRepository) Upsert(ctx context.Context, userID int64, patch domain.ProviderStatusPatch) (*domain.ProviderStatus, error) {
	s, err := r.upsert(ctx, userID, patch)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		s, err = r.upsert(ctx, userID, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert provider status: %w", err)
	}
	return s, nil
}

func (r *ProviderStatusRepository) upsert(ctx context.Context, userID int64, patch domain.ProviderStatusPatch) (*domain.ProviderStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"last_updated": time.Now().UTC()}
	onInsert := bson.M{}
	if patch.IsOnline != nil {
		set["is_online"] = *patch.IsOnline
	} else {
		onInsert["is_online"] = false
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}

	update := bson.M{"$set": set}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var s domain.ProviderStatus
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProviderStatusRepository) ListOnline(ctx context.Context) ([]*domain.ProviderStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"is_online": true}, options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list online providers: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.ProviderStatus, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode provider status: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the provider_status collection.
func (r *ProviderStatusRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_online", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
