package models

import "time"

// Profile holds contact details and notification preferences of a user.
type Profile struct {
	UserID                    string    `bson:"_id" json:"user_id"`
	Username                  string    `bson:"username" json:"username"`
	PhoneNumber               string    `bson:"phone_number" json:"phone_number"`
	NotificationFeeding       bool      `bson:"notification_feeding" json:"notification_feeding"`
	NotificationVaccination   bool      `bson:"notification_vaccination" json:"notification_vaccination"`
	NotificationHealthReports bool      `bson:"notification_health_reports" json:"notification_health_reports"`
	CreatedAt                 time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt                 time.Time `bson:"updated_at" json:"updated_at"`
}
