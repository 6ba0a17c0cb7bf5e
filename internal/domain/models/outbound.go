package models

import "time"

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// Reminder is a notification to deliver at FireAt. Reminders sharing a Tag
// replace each other.
type Reminder struct {
	To     string
	Title  string
	Body   string
	FireAt time.Time
	Tag    string
}
