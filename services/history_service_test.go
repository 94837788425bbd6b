package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge/latency"
	"forge/models"
)

func recordAt(hs *HistoryService, at time.Time, in models.LatencyInput) models.CalculationRecord {
	hs.now = func() time.Time { return at }
	cfg := latency.Normalize(in)
	return hs.RecordCalculation(cfg, latency.CalculateConfig(cfg), "")
}

func pingInput(ping float64) models.LatencyInput {
	return models.LatencyInput{NetworkPing: &ping}
}

func TestHistory_RecordCalculation(t *testing.T) {
	hs := NewHistoryService(nil)
	rec := hs.RecordCalculation(latency.Normalize(models.LatencyInput{}), latency.Calculate(models.LatencyInput{}), "GB")

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "GB", rec.Country)
	assert.Equal(t, models.RatingExcellent, rec.Rating)
	assert.Equal(t, models.TechnologyNone, rec.Technology)

	recent := hs.RecentCalculations(context.Background(), 10)
	require.Len(t, recent, 1)
	assert.Equal(t, rec.ID, recent[0].ID)
}

func TestHistory_RingIsBounded(t *testing.T) {
	hs := NewHistoryService(nil)
	var last models.CalculationRecord
	for i := 0; i < maxRecentCalculations+25; i++ {
		last = hs.RecordCalculation(models.LatencyConfig{}, models.LatencyBreakdown{Total: float64(i)}, "")
	}

	all := hs.RecentCalculations(context.Background(), 0)
	assert.Len(t, all, maxRecentCalculations)
	assert.Equal(t, last.ID, all[0].ID, "newest first")
	assert.Equal(t, 25.0, all[len(all)-1].Total, "oldest entries dropped")

	assert.Len(t, hs.RecentCalculations(context.Background(), 3), 3)
}

func TestHistory_RatingDistribution(t *testing.T) {
	hs := NewHistoryService(nil)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	recordAt(hs, now.Add(-time.Hour), pingInput(0))     // EXCELLENT
	recordAt(hs, now.Add(-2*time.Hour), pingInput(10))  // EXCELLENT
	recordAt(hs, now.Add(-3*time.Hour), pingInput(100)) // AVERAGE
	recordAt(hs, now.AddDate(0, 0, -10), pingInput(300))

	hs.now = func() time.Time { return now }
	got := hs.RatingDistribution(context.Background(), 7)

	assert.Equal(t, []models.RatingCount{
		{Rating: models.RatingExcellent, Count: 2},
		{Rating: models.RatingAverage, Count: 1},
	}, got)
}

func TestHistory_DailyStats(t *testing.T) {
	hs := NewHistoryService(nil)
	day1 := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)

	hs.now = func() time.Time { return day1 }
	hs.RecordCalculation(models.LatencyConfig{}, models.LatencyBreakdown{Total: 20}, "")
	hs.RecordCalculation(models.LatencyConfig{}, models.LatencyBreakdown{Total: 30}, "")
	hs.now = func() time.Time { return day2 }
	hs.RecordCalculation(models.LatencyConfig{}, models.LatencyBreakdown{Total: 50}, "")

	hs.now = func() time.Time { return day2.Add(time.Hour) }
	got := hs.DailyStats(context.Background(), 7)

	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, 2, got[0].Calculations)
	assert.Equal(t, 25.0, got[0].AvgTotal)
	assert.Equal(t, 20.0, got[0].MinTotal)
	assert.Equal(t, 30.0, got[0].MaxTotal)
	assert.Equal(t, 1, got[1].Calculations)
	assert.Equal(t, 50.0, got[1].AvgTotal)
}

func TestHistory_RecentRates(t *testing.T) {
	hs := NewHistoryService(nil)
	for i := 0; i < maxRecentRates+5; i++ {
		hs.RecordRates(context.Background(), models.RateSnapshot{
			Timestamp: time.Unix(int64(i), 0),
			Base:      models.CurrencyUSD,
			Source:    SourceUpstream,
		})
	}

	got := hs.RecentRates(context.Background(), 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(maxRecentRates+4), got[0].Timestamp.Unix())
	assert.Len(t, hs.RecentRates(context.Background(), 0), maxRecentRates)
}

func TestHistory_DisabledMongo(t *testing.T) {
	mongo := &MongoDBService{enabled: false}
	hs := NewHistoryService(mongo)

	hs.RecordCalculation(models.LatencyConfig{}, models.LatencyBreakdown{Rating: models.RatingPoor}, "")
	hs.Wait()

	assert.Len(t, hs.RatingDistribution(context.Background(), 1), 1)
	assert.ErrorIs(t, mongo.InsertCalculation(context.Background(), &models.CalculationRecord{}), ErrMongoDisabled)
	_, err := mongo.GetDailyLatencyStats(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrMongoDisabled)
	assert.NoError(t, mongo.Close())
}
