package listings

import (
	"log/slog"
	"net/http"
	"strconv"

	"marketplace/internal/auth"
	"marketplace/internal/errors"
	"marketplace/internal/json"

	"github.com/go-chi/chi/v5"
)

const defaultFeaturedLimit = 6

type ListingsHandler struct {
	service ListingsService
}

func NewListingsHandler(svc ListingsService) *ListingsHandler {
	return &ListingsHandler{
		service: svc,
	}
}

// GetListings serves the browse surface. The collection is scoped server-side
// by category or seller, then the in-memory filter pipeline is applied with
// whatever predicate params the client sent.
func (h *ListingsHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state := DefaultFilterState()
	state.SearchQuery = q.Get("q")
	if sort := q.Get("sort"); sort != "" {
		state.SortBy = SortMode(sort)
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "min_price must be a number", err))
			return
		}
		state.PriceMin = v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "max_price must be a number", err))
			return
		}
		state.PriceMax = v
	}

	var items []Listing
	var err error
	category := q.Get("category")
	switch {
	case q.Get("seller") != "":
		items, err = h.service.ListBySeller(ctx, q.Get("seller"))
	case category != "" && category != CategoryAll:
		items, err = h.service.ListByCategory(ctx, category)
	default:
		items, err = h.service.ListAll(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch listings", "error", err)
		errors.RespondError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, Filter(items, state))
}

func (h *ListingsHandler) GetFeaturedListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "limit must be a positive integer", err))
			return
		}
		limit = v
	}

	items, err := h.service.ListFeatured(ctx, int32(limit))
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch featured listings", "error", err)
		errors.RespondError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, items)
}

func (h *ListingsHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		slog.WarnContext(ctx, "Missing listing ID in request")
		errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "Listing ID is required", nil))
		return
	}

	slog.DebugContext(ctx, "Fetching listing by ID", "listing_id", listingID)

	listing, err := h.service.GetByID(ctx, listingID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch listing by ID", "error", err)
		errors.RespondError(w, r, err)
		return
	}
	if listing == nil {
		// Absence is not a service error, but it is a 404 on the HTTP surface.
		errors.RespondError(w, r, errors.New(errors.ErrNotFound, "Listing not found", nil))
		return
	}

	json.Write(w, http.StatusOK, listing)
}

func (h *ListingsHandler) IncrementListingViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "Listing ID is required", nil))
		return
	}

	if err := h.service.IncrementViews(ctx, listingID); err != nil {
		slog.WarnContext(ctx, "Failed to increment listing views", "listing_id", listingID, "error", err)
		errors.RespondError(w, r, err)
		return
	}

	json.Write(w, http.StatusNoContent, nil)
}

func (h *ListingsHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userInfo, err := auth.GetUserInfo(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unauthenticated create attempt", "error", err)
		errors.RespondError(w, r, errors.New(errors.ErrUnauthenticated, "You must be logged in to create a listing", err))
		return
	}

	slog.DebugContext(ctx, "Creating listing", "user_id", userInfo.ID)

	createListingRequest := CreateListingRequest{}
	if err := json.Read(r, &createListingRequest); err != nil {
		slog.WarnContext(ctx, "Invalid request body", "error", err)
		errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "Input provided was not in the format expected. Please contact support if this error persists.", err))
		return
	}

	listing, err := h.service.Create(ctx, userInfo, &createListingRequest)
	if err != nil {
		slog.WarnContext(ctx, "Failed to create listing", "error", err)
		errors.RespondError(w, r, err)
		return
	}

	json.Write(w, http.StatusCreated, listing)
}

func (h *ListingsHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		slog.WarnContext(ctx, "Missing listing ID in request")
		errors.RespondError(w, r, errors.New(errors.ErrInvalidInput, "Listing ID is required", nil))
		return
	}

	userInfo, err := auth.GetUserInfo(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unauthenticated delete attempt", "error", err)
		errors.RespondError(w, r, errors.New(errors.ErrUnauthenticated, "You must be logged in to delete a listing", err))
		return
	}

	slog.DebugContext(ctx, "Deleting listing", "user_id", userInfo.ID, "listing_id", listingID)

	if err := h.service.Remove(ctx, userInfo, listingID); err != nil {
		slog.WarnContext(ctx, "Failed to delete listing", "error", err)
		errors.RespondError(w, r, err)
		return
	}

	json.Write(w, http.StatusNoContent, nil)
}
