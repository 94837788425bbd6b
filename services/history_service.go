package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"forge/logging"
	"forge/models"
	"forge/utils"
)

const (
	maxRecentCalculations = 500
	maxRecentRates        = 100

	persistTimeout = 5 * time.Second
)

// ratings in severity order, used to break ties in the distribution
var ratingOrder = []models.Rating{
	models.RatingExcellent,
	models.RatingGood,
	models.RatingAverage,
	models.RatingFair,
	models.RatingPoor,
}

// HistoryService records calculations and rate fetches. Recent entries are
// always kept in memory; MongoDB, when enabled, holds the full history and
// serves analytics.
type HistoryService struct {
	mongo *MongoDBService
	log   *zerolog.Logger
	mutex sync.RWMutex
	wg    sync.WaitGroup

	recentCalculations []models.CalculationRecord
	recentRates        []models.RateSnapshot

	now func() time.Time
}

func NewHistoryService(mongo *MongoDBService) *HistoryService {
	return &HistoryService{
		mongo:              mongo,
		log:                logging.GetSubsystemLogger("history"),
		recentCalculations: make([]models.CalculationRecord, 0),
		recentRates:        make([]models.RateSnapshot, 0),
		now:                time.Now,
	}
}

// RecordCalculation stores a calculation. Persistence happens in the
// background and failures are only logged.
func (hs *HistoryService) RecordCalculation(cfg models.LatencyConfig, b models.LatencyBreakdown, country string) models.CalculationRecord {
	record := models.CalculationRecord{
		ID:         uuid.NewString(),
		Timestamp:  hs.now().UTC(),
		Config:     cfg,
		Total:      b.Total,
		Rating:     b.Rating,
		Technology: b.Technology,
		Country:    country,
	}

	hs.mutex.Lock()
	hs.recentCalculations = append(hs.recentCalculations, record)
	if len(hs.recentCalculations) > maxRecentCalculations {
		hs.recentCalculations = hs.recentCalculations[len(hs.recentCalculations)-maxRecentCalculations:]
	}
	hs.mutex.Unlock()

	if hs.mongo.Enabled() {
		hs.persist(func(ctx context.Context) error {
			return hs.mongo.InsertCalculation(ctx, &record)
		}, "calculation")
	}

	return record
}

// RecordRates implements RatesRecorder.
func (hs *HistoryService) RecordRates(_ context.Context, snapshot models.RateSnapshot) {
	hs.mutex.Lock()
	hs.recentRates = append(hs.recentRates, snapshot)
	if len(hs.recentRates) > maxRecentRates {
		hs.recentRates = hs.recentRates[len(hs.recentRates)-maxRecentRates:]
	}
	hs.mutex.Unlock()

	if hs.mongo.Enabled() {
		hs.persist(func(ctx context.Context) error {
			return hs.mongo.InsertRateSnapshot(ctx, &snapshot)
		}, "rate snapshot")
	}
}

func (hs *HistoryService) persist(insert func(context.Context) error, what string) {
	hs.wg.Add(1)
	go func() {
		defer hs.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := insert(ctx); err != nil {
			hs.log.Error().Err(err).Msgf("error saving %s to MongoDB", what)
		}
	}()
}

// Wait blocks until pending MongoDB writes finish.
func (hs *HistoryService) Wait() {
	hs.wg.Wait()
}

// ============================================
// Analytics
// ============================================

// RatingDistribution counts calculations per rating over the last days.
func (hs *HistoryService) RatingDistribution(ctx context.Context, days int) []models.RatingCount {
	since := hs.since(days)

	if hs.mongo.Enabled() {
		results, err := hs.mongo.GetRatingDistribution(ctx, since)
		if err == nil {
			return sortRatingCounts(results)
		}
		hs.log.Warn().Err(err).Msg("rating distribution query failed, using recent history")
	}

	counts := lo.CountValuesBy(hs.calculationsSince(since), func(r models.CalculationRecord) models.Rating {
		return r.Rating
	})
	results := make([]models.RatingCount, 0, len(counts))
	for rating, count := range counts {
		results = append(results, models.RatingCount{Rating: rating, Count: count})
	}
	return sortRatingCounts(results)
}

// DailyStats aggregates calculations per UTC day over the last days.
func (hs *HistoryService) DailyStats(ctx context.Context, days int) []models.DailyLatencyStats {
	since := hs.since(days)

	if hs.mongo.Enabled() {
		results, err := hs.mongo.GetDailyLatencyStats(ctx, since)
		if err == nil {
			return results
		}
		hs.log.Warn().Err(err).Msg("daily stats query failed, using recent history")
	}

	byDay := lo.GroupBy(hs.calculationsSince(since), func(r models.CalculationRecord) time.Time {
		return r.Timestamp.UTC().Truncate(24 * time.Hour)
	})

	results := make([]models.DailyLatencyStats, 0, len(byDay))
	for day, records := range byDay {
		totals := lo.Map(records, func(r models.CalculationRecord, _ int) float64 { return r.Total })
		results = append(results, models.DailyLatencyStats{
			Date:         day,
			Calculations: len(records),
			AvgTotal:     utils.RoundTo(lo.Sum(totals)/float64(len(totals)), 2),
			MinTotal:     lo.Min(totals),
			MaxTotal:     lo.Max(totals),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date.Before(results[j].Date) })
	return results
}

// RecentCalculations returns up to limit calculations, newest first.
func (hs *HistoryService) RecentCalculations(ctx context.Context, limit int) []models.CalculationRecord {
	if hs.mongo.Enabled() {
		results, err := hs.mongo.GetRecentCalculations(ctx, limit)
		if err == nil {
			return results
		}
		hs.log.Warn().Err(err).Msg("recent calculations query failed, using recent history")
	}

	hs.mutex.RLock()
	defer hs.mutex.RUnlock()
	return newestFirst(hs.recentCalculations, limit)
}

// RecentRates returns up to limit rate snapshots, newest first.
func (hs *HistoryService) RecentRates(ctx context.Context, limit int) []models.RateSnapshot {
	if hs.mongo.Enabled() {
		results, err := hs.mongo.GetRecentRateSnapshots(ctx, limit)
		if err == nil {
			return results
		}
		hs.log.Warn().Err(err).Msg("rate snapshot query failed, using recent history")
	}

	hs.mutex.RLock()
	defer hs.mutex.RUnlock()
	return newestFirst(hs.recentRates, limit)
}

func (hs *HistoryService) since(days int) time.Time {
	if days <= 0 {
		days = 1
	}
	return hs.now().UTC().AddDate(0, 0, -days)
}

func (hs *HistoryService) calculationsSince(since time.Time) []models.CalculationRecord {
	hs.mutex.RLock()
	defer hs.mutex.RUnlock()
	return lo.Filter(hs.recentCalculations, func(r models.CalculationRecord, _ int) bool {
		return !r.Timestamp.Before(since)
	})
}

func newestFirst[T any](items []T, limit int) []T {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	out := make([]T, 0, limit)
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}

func sortRatingCounts(counts []models.RatingCount) []models.RatingCount {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return lo.IndexOf(ratingOrder, counts[i].Rating) < lo.IndexOf(ratingOrder, counts[j].Rating)
	})
	return counts
}
