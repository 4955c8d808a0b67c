package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ip-lookup/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// MongoIPRecordRepository implements IPRecordRepository for MongoDB.
// IDs come from a per-collection counter document so they stay integers.
type MongoIPRecordRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoIPRecordRepository creates a new MongoIPRecordRepository
func NewMongoIPRecordRepository(client *mongo.Client, database, collection string) *MongoIPRecordRepository {
	return &MongoIPRecordRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

func (r *MongoIPRecordRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// Close closes the MongoDB connection
func (r *MongoIPRecordRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// FindByIP retrieves the record stored for an IP address
func (r *MongoIPRecordRepository) FindByIP(ctx context.Context, ip string) (*models.IPRecord, error) {
	var record models.IPRecord
	err := r.coll().FindOne(ctx, bson.M{"ip_address": ip}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding ip record: %w", err)
	}

	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// Insert stores a new record; the unique index turns a duplicate into ErrConflict
func (r *MongoIPRecordRepository) Insert(ctx context.Context, record *models.IPRecord) (*models.IPRecord, error) {
	stored := *record
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	stored.ID = id

	if _, err := r.coll().InsertOne(ctx, &stored); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("error inserting ip record: %w", err)
	}

	return &stored, nil
}

// ListByCreatedAtDesc returns up to limit records, newest first
func (r *MongoIPRecordRepository) ListByCreatedAtDesc(ctx context.Context, limit int) ([]*models.IPRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, opts)
}

// FindAll returns every record in insertion order
func (r *MongoIPRecordRepository) FindAll(ctx context.Context) ([]*models.IPRecord, error) {
	return r.find(ctx, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Count returns the number of stored records
func (r *MongoIPRecordRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting ip records: %w", err)
	}
	return n, nil
}

func (r *MongoIPRecordRepository) find(ctx context.Context, opts *options.FindOptions) ([]*models.IPRecord, error) {
	cursor, err := r.coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding ip records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*models.IPRecord{}
	for cursor.Next(ctx) {
		var record models.IPRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("error decoding ip record: %w", err)
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ip records: %w", err)
	}

	return records, nil
}

func (r *MongoIPRecordRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.client.Database(r.database).Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": r.collection}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating ip record id: %w", err)
	}
	return counter.Seq, nil
}
