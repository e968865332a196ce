package listings

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/cache"
	"marketplace/internal/database/postgresql"
	"marketplace/internal/errors"
	"marketplace/internal/events"
	"marketplace/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel/trace"
)

const (
	featuredCacheKeyFmt = "listings:featured:%d"
	featuredCacheTTL    = time.Minute
)

type ListingsService interface {
	ListAll(ctx context.Context) ([]Listing, error)
	ListByCategory(ctx context.Context, category string) ([]Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Listing, error)
	ListFeatured(ctx context.Context, limit int32) ([]Listing, error)
	// GetByID returns (nil, nil) when no record matches; absence is not an error.
	GetByID(ctx context.Context, id string) (*Listing, error)
	Create(ctx context.Context, userInfo auth.UserInfo, req *CreateListingRequest) (Listing, error)
	IncrementViews(ctx context.Context, id string) error
	Remove(ctx context.Context, userInfo auth.UserInfo, id string) error
}

type svc struct {
	repo           *postgresql.Queries
	logger         *slog.Logger
	storage        storage.Provider
	eventHandler   *events.EventHandler
	cache          *cache.RedisClient
	publicFilesURL string
}

func NewListingsService(repo *postgresql.Queries, logger *slog.Logger, storage storage.Provider, eventHandler *events.EventHandler, cache *cache.RedisClient, publicFilesURL string) ListingsService {
	return &svc{
		repo:           repo,
		logger:         logger,
		storage:        storage,
		eventHandler:   eventHandler,
		cache:          cache,
		publicFilesURL: publicFilesURL,
	}
}

func (s *svc) ListAll(ctx context.Context) ([]Listing, error) {
	rows, err := s.repo.ListListings(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list listings", "error", err)
		return nil, errors.New(errors.ErrStoreUnavailable, "Unable to load listings. Please try again later.", err)
	}
	return fromRows(rows), nil
}

func (s *svc) ListByCategory(ctx context.Context, category string) ([]Listing, error) {
	// Unknown categories are not an error; they simply match nothing.
	rows, err := s.repo.ListListingsByCategory(ctx, category)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list listings by category", "category", category, "error", err)
		return nil, errors.New(errors.ErrStoreUnavailable, "Unable to load listings. Please try again later.", err)
	}
	return fromRows(rows), nil
}

func (s *svc) ListBySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	var sellerUUID pgtype.UUID
	if err := sellerUUID.Scan(sellerID); err != nil {
		return nil, errors.New(errors.ErrInvalidInput, "Invalid seller ID provided", err)
	}

	rows, err := s.repo.ListListingsBySeller(ctx, sellerUUID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list listings by seller", "seller_id", sellerID, "error", err)
		return nil, errors.New(errors.ErrStoreUnavailable, "Unable to load listings. Please try again later.", err)
	}
	return fromRows(rows), nil
}

func (s *svc) ListFeatured(ctx context.Context, limit int32) ([]Listing, error) {
	if limit <= 0 {
		return nil, errors.New(errors.ErrInvalidInput, "Limit must be positive", nil)
	}

	cacheKey := fmt.Sprintf(featuredCacheKeyFmt, limit)
	if s.cache != nil {
		cached, found, err := cache.Get[[]Listing](s.cache, ctx, cacheKey)
		if err != nil {
			// Cache trouble never blocks the read path.
			s.logger.WarnContext(ctx, "Featured listings cache read failed", "error", err)
		} else if found {
			return *cached, nil
		}
	}

	rows, err := s.repo.ListFeaturedListings(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list featured listings", "error", err)
		return nil, errors.New(errors.ErrStoreUnavailable, "Unable to load featured listings. Please try again later.", err)
	}

	items := fromRows(rows)
	if s.cache != nil {
		if err := cache.Set(s.cache, ctx, cacheKey, items, featuredCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Featured listings cache write failed", "error", err)
		}
	}
	return items, nil
}

func (s *svc) GetByID(ctx context.Context, id string) (*Listing, error) {
	var listingUUID pgtype.UUID
	if err := listingUUID.Scan(id); err != nil {
		// A malformed ID can never match a record.
		return nil, nil
	}

	row, err := s.repo.GetListingByID(ctx, listingUUID)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Failed to get listing", "listing_id", id, "error", err)
		return nil, errors.New(errors.ErrStoreUnavailable, "Unable to load the listing. Please try again later.", err)
	}

	listing := fromRow(row)
	return &listing, nil
}

func (s *svc) Create(ctx context.Context, userInfo auth.UserInfo, req *CreateListingRequest) (Listing, error) {
	if userInfo.ID == "" {
		return Listing{}, errors.New(errors.ErrUnauthenticated, "You must be logged in to create a listing", nil)
	}

	s.logger.InfoContext(ctx, "Creating listing", "user", userInfo.ID, "name", req.Name)
	if err := req.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed", "error", err)
		return Listing{}, err
	}

	var sellerUUID pgtype.UUID
	if err := sellerUUID.Scan(userInfo.ID); err != nil {
		s.logger.WarnContext(ctx, "Invalid user ID", "error", err)
		return Listing{}, errors.New(errors.ErrInternal, "Invalid user ID", fmt.Errorf("invalid user uuid: %w", err))
	}

	condition := strings.TrimSpace(req.Condition)
	if condition == "" {
		condition = DefaultCondition
	}

	row, err := s.repo.InsertListing(ctx, postgresql.InsertListingParams{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        *req.Price,
		ImageUrl:     pgtype.Text{String: req.ImageURL, Valid: req.ImageURL != ""},
		SellerID:     sellerUUID,
		SellerName:   userInfo.DisplayName,
		SellerAvatar: pgtype.Text{String: userInfo.AvatarURL, Valid: userInfo.AvatarURL != ""},
		Category:     req.Category,
		Condition:    condition,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create listing", "error", err)
		return Listing{}, errors.New(errors.ErrStoreUnavailable, "Failed to create listing. Please try again later.", err)
	}

	listing := fromRow(row)

	// Post-commit publication: a failed event never fails the create.
	if s.eventHandler != nil {
		if err := s.eventHandler.RaiseListingCreatedEvent(events.ListingCreatedEvent{
			ListingID: listing.ID,
			SellerID:  listing.SellerID,
			Category:  listing.Category,
			Price:     listing.Price,
			TraceID:   traceIDFromContext(ctx),
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish listing created event", "listing_id", listing.ID, "error", err)
		}
	}

	return listing, nil
}

func (s *svc) IncrementViews(ctx context.Context, id string) error {
	var listingUUID pgtype.UUID
	if err := listingUUID.Scan(id); err != nil {
		return errors.New(errors.ErrNotFound, "Listing not found", err)
	}

	affected, err := s.repo.IncrementListingViews(ctx, listingUUID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to increment views", "listing_id", id, "error", err)
		return errors.New(errors.ErrStoreUnavailable, "Unable to record the view. Please try again later.", err)
	}
	if affected == 0 {
		return errors.New(errors.ErrNotFound, "Listing not found", nil)
	}
	return nil
}

func (s *svc) Remove(ctx context.Context, userInfo auth.UserInfo, id string) error {
	if userInfo.ID == "" {
		return errors.New(errors.ErrUnauthenticated, "You must be logged in to delete a listing", nil)
	}

	var listingUUID pgtype.UUID
	if err := listingUUID.Scan(id); err != nil {
		return errors.New(errors.ErrNotFound, "Listing not found", err)
	}

	row, err := s.repo.GetListingByID(ctx, listingUUID)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return errors.New(errors.ErrNotFound, "Listing not found", nil)
		}
		s.logger.ErrorContext(ctx, "Failed to load listing for delete", "listing_id", id, "error", err)
		return errors.New(errors.ErrStoreUnavailable, "Unable to delete the listing. Please try again later.", err)
	}

	listing := fromRow(row)
	if listing.SellerID != userInfo.ID {
		s.logger.WarnContext(ctx, "Delete refused for non-owner", "listing_id", id, "seller_id", listing.SellerID, "caller_id", userInfo.ID)
		return errors.New(errors.ErrUnauthorized, "You can only delete your own listings", nil)
	}

	affected, err := s.repo.DeleteListing(ctx, listingUUID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete listing", "listing_id", id, "error", err)
		return errors.New(errors.ErrStoreUnavailable, "Unable to delete the listing. Please try again later.", err)
	}
	if affected == 0 {
		// Deleted concurrently between the ownership check and here.
		return errors.New(errors.ErrNotFound, "Listing not found", nil)
	}

	// The record is gone; everything below is best-effort cleanup.
	if listing.ImageURL != "" && s.storage != nil {
		key := s.imageObjectKey(listing.ImageURL)
		if err := s.storage.Delete(ctx, storage.BucketListingImages, key); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete listing image", "listing_id", id, "key", key, "error", err)
		}
	}

	if s.eventHandler != nil {
		if err := s.eventHandler.RaiseListingDeletedEvent(events.ListingDeletedEvent{
			ListingID: listing.ID,
			SellerID:  listing.SellerID,
			ImageURL:  listing.ImageURL,
			TraceID:   traceIDFromContext(ctx),
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish listing deleted event", "listing_id", id, "error", err)
		}
	}

	return nil
}

// imageObjectKey recovers the object key from a stored image URL. Stored
// values are either a bare object key or a public URL of the form
// {publicFilesURL}/{bucket}/{key}.
func (s *svc) imageObjectKey(imageURL string) string {
	key := imageURL
	if s.publicFilesURL != "" {
		if rest, ok := strings.CutPrefix(key, strings.TrimSuffix(s.publicFilesURL, "/")+"/"); ok {
			key = rest
		}
	}
	if rest, ok := strings.CutPrefix(key, string(storage.BucketListingImages)+"/"); ok {
		key = rest
	}
	return strings.TrimPrefix(key, "/")
}

func traceIDFromContext(ctx context.Context) string {
	spanContext := trace.SpanContextFromContext(ctx)
	if spanContext.IsValid() {
		return spanContext.TraceID().String()
	}
	return ""
}
