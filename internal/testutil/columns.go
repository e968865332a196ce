package testutil

// ListingsCols must match the column order of listingColumns (and every
// RETURNING clause) in the postgresql package.
var ListingsCols = []string{
	"id", "name", "description", "price", "image_url",
	"seller_id", "seller_name", "seller_avatar", "category",
	"condition", "featured", "views", "created_at",
}
