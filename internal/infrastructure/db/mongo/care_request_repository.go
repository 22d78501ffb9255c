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

const collectionCareRequests = "care_requests"

type CareRequestRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewCareRequestRepository(db *mongo.Database) *CareRequestRepository {
	return &CareRequestRepository{col: db.Collection(collectionCareRequests), seq: newSequence(db, collectionCareRequests)}
}

// Create inserts a new care request document.
func (r *CareRequestRepository) Create(ctx context.Context, req *domain.CareRequest) (*domain.CareRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := req.Clone()
	doc.ID = id
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("insert care request: %w", err)
	}
	return doc, nil
}

func (r *CareRequestRepository) FindByID(ctx context.Context, id int64) (*domain.CareRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIdempotencyKey retrieves a request the seeker created with the given key.
func (r *CareRequestRepository) FindByIdempotencyKey(ctx context.Context, seekerID int64, key string) (*domain.CareRequest, error) {
	return r.findOne(ctx, bson.M{"seeker_id": seekerID, "idempotency_key": key})
}

func (r *CareRequestRepository) findOne(ctx context.Context, filter bson.M) (*domain.CareRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.CareRequest
	if err := r.col.FindOne(ctx, filter).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCareRequestNotFound
		}
		return nil, fmt.Errorf("find care request: %w", err)
	}
	return &req, nil
}

func (r *CareRequestRepository) ListBySeeker(ctx context.Context, seekerID int64) ([]*domain.CareRequest, error) {
	return r.list(ctx, bson.M{"seeker_id": seekerID})
}

func (r *CareRequestRepository) ListByProvider(ctx context.Context, providerID int64) ([]*domain.CareRequest, error) {
	return r.list(ctx, bson.M{"provider_id": providerID})
}

func (r *CareRequestRepository) list(ctx context.Context, filter bson.M) ([]*domain.CareRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list care requests: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.CareRequest, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode care requests: %w", err)
	}
	return out, nil
}

func (r *CareRequestRepository) Update(ctx context.Context, id int64, patch domain.CareRequestPatch) (*domain.CareRequest, error) {
	return r.findOneAndSet(ctx, bson.M{"_id": id}, patch)
}

// UpdateIfStatus filters on both id and status so the check and the write are
// a single server-side operation.
func (r *CareRequestRepository) UpdateIfStatus(ctx context.Context, id int64, expected domain.RequestStatus, patch domain.CareRequestPatch) (*domain.CareRequest, error) {
	req, err := r.findOneAndSet(ctx, bson.M{"_id": id, "status": expected}, patch)
	if !errors.Is(err, domain.ErrCareRequestNotFound) {
		return req, err
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrStatusChanged
}

func (r *CareRequestRepository) findOneAndSet(ctx context.Context, filter bson.M, patch domain.CareRequestPatch) (*domain.CareRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": careRequestPatchSet(patch, time.Now().UTC())}

	var req domain.CareRequest
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCareRequestNotFound
		}
		return nil, fmt.Errorf("update care request: %w", err)
	}
	return &req, nil
}

// EnsureIndexes creates necessary indexes on the care_requests collection.
func (r *CareRequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seeker_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "status", Value: 1}}},
		{
			Keys: bson.D{{Key: "seeker_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func careRequestPatchSet(p domain.CareRequestPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ClearProvider {
		set["provider_id"] = nil
	} else if p.ProviderID != nil {
		set["provider_id"] = *p.ProviderID
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Summary != nil {
		set["summary"] = *p.Summary
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}
	if p.DurationMinutes != nil {
		set["duration_minutes"] = *p.DurationMinutes
	}
	if p.EstimatedCost != nil {
		set["estimated_cost"] = *p.EstimatedCost
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Coordinates != nil {
		set["coordinates"] = *p.Coordinates
	}
	if p.ScheduledFor != nil {
		set["scheduled_for"] = p.ScheduledFor.UTC()
	}
	return set
}
