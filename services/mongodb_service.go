package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"forge/config"
	"forge/logging"
	"forge/models"
)

type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
	log     *zerolog.Logger
}

const (
	CollectionCalculations  = "latency_calculations"
	CollectionRateSnapshots = "rate_snapshots"
)

// NewMongoDBService connects when MongoDB is enabled. A disabled service is
// returned as a usable no-op value.
func NewMongoDBService(cfg *config.Config) (*MongoDBService, error) {
	logger := logging.GetSubsystemLogger("mongodb")

	if !cfg.MongoDB.Enabled {
		logger.Info().Msg("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false, log: logger}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	service := &MongoDBService{
		client:  client,
		db:      client.Database(cfg.MongoDB.Database),
		enabled: true,
		log:     logger,
	}

	if err := service.createIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to create indexes")
	}

	logger.Info().Str("database", cfg.MongoDB.Database).Msg("MongoDB connected")
	return service, nil
}

func (m *MongoDBService) Enabled() bool {
	return m != nil && m.enabled
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionCalculations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "rating", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("rating_timestamp"),
		},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionRateSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	return err
}

func (m *MongoDBService) Ping(ctx context.Context) error {
	if !m.Enabled() {
		return ErrMongoDisabled
	}
	return m.client.Ping(ctx, nil)
}

func (m *MongoDBService) Close() error {
	if !m.Enabled() || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ============================================
// INSERT METHODS
// ============================================

func (m *MongoDBService) InsertCalculation(ctx context.Context, record *models.CalculationRecord) error {
	if !m.Enabled() {
		return ErrMongoDisabled
	}
	_, err := m.db.Collection(CollectionCalculations).InsertOne(ctx, record)
	return err
}

func (m *MongoDBService) InsertRateSnapshot(ctx context.Context, snapshot *models.RateSnapshot) error {
	if !m.Enabled() {
		return ErrMongoDisabled
	}
	_, err := m.db.Collection(CollectionRateSnapshots).InsertOne(ctx, snapshot)
	return err
}

// ============================================
// QUERY METHODS
// ============================================

// GetRatingDistribution counts calculations per rating since the given time.
func (m *MongoDBService) GetRatingDistribution(ctx context.Context, since time.Time) ([]models.RatingCount, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$rating",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := m.db.Collection(CollectionCalculations).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.RatingCount
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetDailyLatencyStats groups calculations per UTC day since the given time.
func (m *MongoDBService) GetDailyLatencyStats(ctx context.Context, since time.Time) ([]models.DailyLatencyStats, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateTrunc": bson.M{
				"date": "$timestamp",
				"unit": "day",
			}},
			"calculations": bson.M{"$sum": 1},
			"avg_total":    bson.M{"$avg": "$total"},
			"min_total":    bson.M{"$min": "$total"},
			"max_total":    bson.M{"$max": "$total"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"date":         "$_id",
			"calculations": 1,
			"avg_total":    bson.M{"$round": []any{"$avg_total", 2}},
			"min_total":    1,
			"max_total":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"date": 1}}},
	}

	cursor, err := m.db.Collection(CollectionCalculations).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.DailyLatencyStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *MongoDBService) GetRecentCalculations(ctx context.Context, limit int) ([]models.CalculationRecord, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	opts := options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(int64(limit))
	cursor, err := m.db.Collection(CollectionCalculations).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.CalculationRecord
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *MongoDBService) GetRecentRateSnapshots(ctx context.Context, limit int) ([]models.RateSnapshot, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	opts := options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(int64(limit))
	cursor, err := m.db.Collection(CollectionRateSnapshots).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.RateSnapshot
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
