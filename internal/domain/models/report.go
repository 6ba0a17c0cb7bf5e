package models

import "time"

// FeedingReport aggregates feedings of a single feed type over a period.
type FeedingReport struct {
	FeedType      string  `json:"feed_type"`
	TotalQuantity float64 `json:"total_quantity"`
	FeedingCount  int     `json:"feeding_count"`
	AnimalsFed    int     `json:"animals_fed"`
}

// GrowthPoint is one weighing in a growth series.
type GrowthPoint struct {
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

// GrowthData is the weight series of one animal with derived gain figures.
type GrowthData struct {
	AnimalID   string        `json:"animal_id"`
	AnimalName string        `json:"animal_name"`
	Weights    []GrowthPoint `json:"weights"`
	WeightGain float64       `json:"weight_gain"`
	GrowthRate float64       `json:"growth_rate"`
}

// HealthSummary counts animals and vaccinations by state.
type HealthSummary struct {
	TotalAnimals            int `json:"total_animals"`
	HealthyAnimals          int `json:"healthy_animals"`
	AnimalsNeedingAttention int `json:"animals_needing_attention"`
	CompletedVaccinations   int `json:"completed_vaccinations"`
	PendingVaccinations     int `json:"pending_vaccinations"`
}
