package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

type EventHandler struct {
	bus    Bus
	config *EventConfig
	logger *slog.Logger
}

func NewEventHandler(bus Bus, config *EventConfig, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		bus:    bus,
		config: config,
		logger: logger,
	}
}

func (h *EventHandler) RaiseListingCreatedEvent(evt ListingCreatedEvent) error {
	h.logger.Info("Raising listing created event",
		"listing_id", evt.ListingID,
		"seller_id", evt.SellerID,
		"category", evt.Category,
	)

	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("Failed to marshal ListingCreatedEvent", "error", err)
		return err
	}

	msgId := fmt.Sprintf("listing.created.%s", evt.ListingID)
	return h.bus.Publish(h.config.ListingCreated, data, msgId)
}

func (h *EventHandler) RaiseListingDeletedEvent(evt ListingDeletedEvent) error {
	h.logger.Info("Raising listing deleted event",
		"listing_id", evt.ListingID,
		"seller_id", evt.SellerID,
	)

	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("Failed to marshal ListingDeletedEvent", "error", err)
		return err
	}

	msgId := fmt.Sprintf("listing.deleted.%s", evt.ListingID)
	return h.bus.Publish(h.config.ListingDeleted, data, msgId)
}
