package models

import "time"

// CalculationRecord is one latency calculation kept for analytics
type CalculationRecord struct {
	ID         string        `bson:"_id" json:"id"`
	Timestamp  time.Time     `bson:"timestamp" json:"timestamp"`
	Config     LatencyConfig `bson:"config" json:"config"`
	Total      float64       `bson:"total" json:"total"`
	Rating     Rating        `bson:"rating" json:"rating"`
	Technology Technology    `bson:"technology" json:"technology"`
	Country    string        `bson:"country,omitempty" json:"country,omitempty"`
}

// RateSnapshot is a successful upstream rate fetch
type RateSnapshot struct {
	Timestamp time.Time            `bson:"timestamp" json:"timestamp"`
	Base      Currency             `bson:"base" json:"base"`
	Rates     map[Currency]float64 `bson:"rates" json:"rates"`
	Source    string               `bson:"source" json:"source"`
}

// RatingCount is one bucket of the rating distribution
type RatingCount struct {
	Rating Rating `bson:"_id" json:"rating"`
	Count  int    `bson:"count" json:"count"`
}

// DailyLatencyStats aggregates calculations per UTC day
type DailyLatencyStats struct {
	Date         time.Time `bson:"date" json:"date"`
	Calculations int       `bson:"calculations" json:"calculations"`
	AvgTotal     float64   `bson:"avg_total" json:"avg_total"`
	MinTotal     float64   `bson:"min_total" json:"min_total"`
	MaxTotal     float64   `bson:"max_total" json:"max_total"`
}
