package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nexerp/edge-access/internal/core/domain"
)

const auditCollection = "authz_audit"

// AuditRepository implements ports.AuditWriter using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Write persists one audit event keyed by its ULID. Writing the same event
// twice is a no-op.
func (r *AuditRepository) Write(ctx context.Context, ev domain.AuditEvent) error {
	doc := bson.M{
		"_id":         ev.ID,
		"kind":        string(ev.Kind),
		"service":     ev.Service,
		"user_id":     ev.UserID,
		"role":        string(ev.Role),
		"method":      ev.Method,
		"path":        ev.Path,
		"occurred_at": ev.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if ev.Job != "" {
		doc["job"] = string(ev.Job)
	}
	if len(ev.Required) > 0 {
		doc["required"] = ev.Required
	}
	if ev.RequestID != "" {
		doc["request_id"] = ev.RequestID
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// EnsureIndexes creates the lookup indexes on the audit collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
