package listings

import (
	"strings"
	"time"

	"marketplace/internal/database/postgresql"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// DefaultCondition is assumed for any listing stored without one.
const DefaultCondition = "Used"

// Listing is the normalized marketplace record served to clients and consumed
// by the filter pipeline. Optional store fields have already been defaulted.
type Listing struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"imageUrl"`
	SellerName   string    `json:"sellerName"`
	SellerAvatar string    `json:"sellerAvatar"`
	SellerID     string    `json:"sellerId"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	Views        int64     `json:"views"`
	Condition    string    `json:"condition"`
	Featured     bool      `json:"featured"`
}

type CreateListingRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Condition   string   `json:"condition"`
}

// Validate enforces the domain rules the store itself does not: required
// fields present and a non-negative price. A zero price is a valid "free"
// listing.
func (req *CreateListingRequest) Validate() *errors.AppError {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New(errors.ErrInvalidInput, "Name is required", nil)
	}
	if strings.TrimSpace(req.Description) == "" {
		return errors.New(errors.ErrInvalidInput, "Description is required", nil)
	}
	if strings.TrimSpace(req.Category) == "" {
		return errors.New(errors.ErrInvalidInput, "Category is required", nil)
	}
	if req.Price == nil {
		return errors.New(errors.ErrInvalidInput, "Price is required", nil)
	}
	if *req.Price < 0 {
		return errors.New(errors.ErrInvalidInput, "Price cannot be negative", nil)
	}
	return nil
}

// fromRow is the validation/defaulting step at the store boundary. Raw rows
// are never trusted to be complete: missing image or avatar means "none",
// missing condition means "Used", and the view counter never goes below zero.
func fromRow(row postgresql.Listing) Listing {
	condition := ""
	if row.Condition.Valid {
		condition = strings.TrimSpace(row.Condition.String)
	}
	if condition == "" {
		condition = DefaultCondition
	}

	views := row.Views
	if views < 0 {
		views = 0
	}

	imageURL := ""
	if row.ImageUrl.Valid {
		imageURL = row.ImageUrl.String
	}
	sellerAvatar := ""
	if row.SellerAvatar.Valid {
		sellerAvatar = row.SellerAvatar.String
	}

	return Listing{
		ID:           uuid.UUID(row.ID.Bytes).String(),
		Name:         row.Name,
		Description:  row.Description,
		Price:        row.Price,
		ImageURL:     imageURL,
		SellerName:   row.SellerName,
		SellerAvatar: sellerAvatar,
		SellerID:     uuid.UUID(row.SellerID.Bytes).String(),
		Category:     row.Category,
		CreatedAt:    row.CreatedAt.Time,
		Views:        views,
		Condition:    condition,
		Featured:     row.Featured,
	}
}

func fromRows(rows []postgresql.Listing) []Listing {
	items := make([]Listing, len(rows))
	for i, row := range rows {
		items[i] = fromRow(row)
	}
	return items
}
