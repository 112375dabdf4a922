package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quimo/inventario/internal/domain/models"
)

const snapshotCollection = "report_snapshots"

// Repository archives period report snapshots.
type Repository interface {
	SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error
	RecentReports(ctx context.Context, period string, limit int64) ([]models.ReportSnapshot, error)
}

// MongoDBRepository implements Repository on a MongoDB collection.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:     client,
		collection: client.Database(dbName).Collection(snapshotCollection),
	}, nil
}

// SaveReport inserts a snapshot. IDs are generated by the caller.
func (r *MongoDBRepository) SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error {
	if _, err := r.collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("insert report snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

// RecentReports returns the newest snapshots of a period, newest first. An
// empty period matches every snapshot.
func (r *MongoDBRepository) RecentReports(ctx context.Context, period string, limit int64) ([]models.ReportSnapshot, error) {
	filter := bson.M{}
	if period != "" {
		filter["period"] = period
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find report snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.ReportSnapshot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode report snapshots: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
