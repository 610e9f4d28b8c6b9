package domain

import "time"

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Delivery statuses reported by the Cloud API webhook.
const (
	StatusAccepted  = "accepted"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// Message is one conversation record, immutable once written except for the
// delivery status fields.
type Message struct {
	ID              string    `json:"id"`
	WaMessageID     string    `json:"wa_message_id"`
	Phone           string    `json:"phone"`
	Direction       string    `json:"direction"`
	Type            string    `json:"type"`
	Body            string    `json:"body,omitempty"`
	Status          string    `json:"status,omitempty"`
	StatusTimestamp string    `json:"status_timestamp,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MessageStats aggregates stored conversation records.
type MessageStats struct {
	Total    int64 `json:"total"`
	Incoming int64 `json:"incoming"`
	Outgoing int64 `json:"outgoing"`
}
