package events

import (
	"os"
)

// ListingCreatedEvent is published after a listing record is committed so
// downstream consumers (feeds, notifications) can react.
type ListingCreatedEvent struct {
	ListingID string  `json:"listing_id"`
	SellerID  string  `json:"seller_id"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	TraceID   string  `json:"trace_id"`
}

// ListingDeletedEvent is published after a listing record is removed.
type ListingDeletedEvent struct {
	ListingID string `json:"listing_id"`
	SellerID  string `json:"seller_id"`
	ImageURL  string `json:"image_url,omitempty"`
	TraceID   string `json:"trace_id"`
}

type EventConfig struct {
	ListingCreated string
	ListingDeleted string
}

func NewEventConfig() *EventConfig {
	return &EventConfig{
		ListingCreated: os.Getenv("EVENT_LISTING_CREATED"),
		ListingDeleted: os.Getenv("EVENT_LISTING_DELETED"),
	}
}
