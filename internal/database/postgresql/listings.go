package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Listing is the raw row shape of the listings table. Normalization into the
// domain shape (defaults for optional fields) happens at the service boundary,
// never here.
type Listing struct {
	ID           pgtype.UUID
	Name         string
	Description  string
	Price        float64
	ImageUrl     pgtype.Text
	SellerID     pgtype.UUID
	SellerName   string
	SellerAvatar pgtype.Text
	Category     string
	Condition    pgtype.Text
	Featured     bool
	Views        int64
	CreatedAt    pgtype.Timestamptz
}

type InsertListingParams struct {
	Name         string
	Description  string
	Price        float64
	ImageUrl     pgtype.Text
	SellerID     pgtype.UUID
	SellerName   string
	SellerAvatar pgtype.Text
	Category     string
	Condition    string
}

// Queries is a hand-written query layer over the listings table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const listingColumns = `id, name, description, price, image_url, seller_id, seller_name, seller_avatar, category, condition, featured, views, created_at`

const listListings = `SELECT ` + listingColumns + `
FROM listings
ORDER BY created_at DESC`

func (q *Queries) ListListings(ctx context.Context) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listListings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

const listListingsByCategory = `SELECT ` + listingColumns + `
FROM listings
WHERE category = $1
ORDER BY created_at DESC`

func (q *Queries) ListListingsByCategory(ctx context.Context, category string) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listListingsByCategory, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

const listListingsBySeller = `SELECT ` + listingColumns + `
FROM listings
WHERE seller_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListListingsBySeller(ctx context.Context, sellerID pgtype.UUID) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listListingsBySeller, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

const listFeaturedListings = `SELECT ` + listingColumns + `
FROM listings
WHERE featured = TRUE
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListFeaturedListings(ctx context.Context, limit int32) ([]Listing, error) {
	rows, err := q.db.Query(ctx, listFeaturedListings, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

const getListingByID = `SELECT ` + listingColumns + `
FROM listings
WHERE id = $1`

// GetListingByID returns pgx.ErrNoRows when no record matches.
func (q *Queries) GetListingByID(ctx context.Context, id pgtype.UUID) (Listing, error) {
	row := q.db.QueryRow(ctx, getListingByID, id)
	var l Listing
	err := scanListing(row, &l)
	return l, err
}

const insertListing = `INSERT INTO listings (
	name, description, price, image_url, seller_id, seller_name, seller_avatar, category, condition, featured, views, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, 0, now()
)
RETURNING ` + listingColumns

// InsertListing assigns created_at server-side and starts every listing with
// views = 0 and featured = FALSE.
func (q *Queries) InsertListing(ctx context.Context, arg InsertListingParams) (Listing, error) {
	row := q.db.QueryRow(ctx, insertListing,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.SellerID,
		arg.SellerName,
		arg.SellerAvatar,
		arg.Category,
		arg.Condition,
	)
	var l Listing
	err := scanListing(row, &l)
	return l, err
}

const incrementListingViews = `UPDATE listings
SET views = views + 1
WHERE id = $1`

// IncrementListingViews bumps the counter in a single UPDATE so concurrent
// increments cannot lose updates. Returns the number of rows affected.
func (q *Queries) IncrementListingViews(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, incrementListingViews, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteListing = `DELETE FROM listings
WHERE id = $1`

// DeleteListing returns the number of rows removed (0 or 1).
func (q *Queries) DeleteListing(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteListing, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanListing(row pgx.Row, l *Listing) error {
	return row.Scan(
		&l.ID,
		&l.Name,
		&l.Description,
		&l.Price,
		&l.ImageUrl,
		&l.SellerID,
		&l.SellerName,
		&l.SellerAvatar,
		&l.Category,
		&l.Condition,
		&l.Featured,
		&l.Views,
		&l.CreatedAt,
	)
}

func scanListings(rows pgx.Rows) ([]Listing, error) {
	items := []Listing{}
	for rows.Next() {
		var l Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
