package models

import "time"

const HealthStatusHealthy = "healthy"

// Animal is a registered head of livestock.
type Animal struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Name         string    `bson:"name" json:"name"`
	Species      string    `bson:"species" json:"species"`
	Breed        string    `bson:"breed,omitempty" json:"breed,omitempty"`
	Age          *int      `bson:"age,omitempty" json:"age,omitempty"`
	Weight       *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	HealthStatus string    `bson:"health_status,omitempty" json:"health_status,omitempty"`
	PhotoURL     string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// WeightRecord captures one weighing of an animal.
type WeightRecord struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	AnimalID   string    `bson:"animal_id" json:"animal_id"`
	Weight     float64   `bson:"weight" json:"weight"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// AnimalPatch is a partial update of an animal; nil fields are left untouched.
type AnimalPatch struct {
	Name         *string  `json:"name"`
	Species      *string  `json:"species"`
	Breed        *string  `json:"breed"`
	Age          *int     `json:"age"`
	Weight       *float64 `json:"weight"`
	HealthStatus *string  `json:"health_status"`
	PhotoURL     *string  `json:"photo_url"`
	Notes        *string  `json:"notes"`
}
