package listings

import (
	"context"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/database/postgresql"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/storage"
	"marketplace/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sellerUUID  = "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"
	otherUUID   = "b1ffcd88-8d1c-4ef8-bb6d-6bb9bd380a22"
	listingUUID = "11111111-1111-1111-1111-111111111111"
)

// stubStorage records best-effort image deletes.
type stubStorage struct {
	deleteKeys []string
	deleteErr  error
}

func (s *stubStorage) GenerateUploadURL(ctx context.Context, cfg storage.UploadConfig) (string, map[string]string, error) {
	return "", nil, nil
}

func (s *stubStorage) PresignGet(ctx context.Context, bucket storage.Bucket, key string, expiry time.Duration) (string, error) {
	return "", nil
}

func (s *stubStorage) Delete(ctx context.Context, bucket storage.Bucket, key string) error {
	s.deleteKeys = append(s.deleteKeys, key)
	return s.deleteErr
}

func newTestService(t *testing.T, mockPool pgxmock.PgxPoolIface, store storage.Provider) *svc {
	t.Helper()
	return &svc{
		repo:           postgresql.New(mockPool),
		logger:         testutil.NewTestLogger(),
		storage:        store,
		publicFilesURL: "https://files.example.com",
	}
}

func listingRow(id, sellerID, name string, price float64, imageURL any) *pgxmock.Rows {
	return pgxmock.NewRows(testutil.ListingsCols).AddRow(
		id, name, "A great item", price, imageURL,
		sellerID, "Test Seller", nil, "Card",
		nil, false, int64(0), time.Now(),
	)
}

func TestCreateListing_Success(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	price := 50.0
	req := &CreateListingRequest{
		Name:        "Charizard card",
		Description: "A great item",
		Price:       &price,
		Category:    "Card",
	}

	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO listings`)).
		WithArgs(
			"Charizard card", "A great item", 50.0, pgxmock.AnyArg(),
			pgxmock.AnyArg(), "Test Seller", pgxmock.AnyArg(), "Card", "Used",
		).
		WillReturnRows(listingRow(listingUUID, sellerUUID, "Charizard card", 50, nil))

	listing, err := service.Create(context.Background(), auth.UserInfo{
		ID:          sellerUUID,
		DisplayName: "Test Seller",
	}, req)

	require.NoError(t, err)
	assert.Equal(t, listingUUID, listing.ID)
	assert.Equal(t, "Charizard card", listing.Name)
	assert.Equal(t, int64(0), listing.Views)
	assert.False(t, listing.Featured)
	// Missing condition defaults at the boundary.
	assert.Equal(t, "Used", listing.Condition)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateListing_NegativePrice(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	price := -5.0
	_, err := service.Create(context.Background(), auth.UserInfo{ID: sellerUUID}, &CreateListingRequest{
		Name:        "Broken",
		Description: "Bad price",
		Price:       &price,
		Category:    "Card",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
	// No insert must have been issued.
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateListing_MissingFields(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	price := 10.0
	cases := []CreateListingRequest{
		{Description: "d", Price: &price, Category: "Card"},
		{Name: "n", Price: &price, Category: "Card"},
		{Name: "n", Description: "d", Price: &price},
		{Name: "n", Description: "d", Category: "Card"},
	}

	for _, req := range cases {
		_, err := service.Create(context.Background(), auth.UserInfo{ID: sellerUUID}, &req)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
	}
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateListing_Unauthenticated(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	price := 10.0
	_, err := service.Create(context.Background(), auth.UserInfo{}, &CreateListingRequest{
		Name:        "Charizard card",
		Description: "A great item",
		Price:       &price,
		Category:    "Card",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthenticated, apperrors.Code(err))
}

func TestGetByID_Absent(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	listing, err := service.GetByID(context.Background(), listingUUID)
	assert.NoError(t, err)
	assert.Nil(t, listing)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetByID_MalformedIDIsAbsent(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	listing, err := service.GetByID(context.Background(), "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, listing)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetByID_AppliesDefaults(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(listingRow(listingUUID, sellerUUID, "Charizard card", 50, nil))

	listing, err := service.GetByID(context.Background(), listingUUID)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "Used", listing.Condition)
	assert.Equal(t, "", listing.ImageURL)
	assert.Equal(t, "", listing.SellerAvatar)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListAll_StoreFailure(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WillReturnError(assert.AnError)

	_, err := service.ListAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrStoreUnavailable, apperrors.Code(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListAll_EmptyResultIsNotAnError(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WillReturnRows(pgxmock.NewRows(testutil.ListingsCols))

	items, err := service.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListFeatured_InvalidLimit(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	_, err := service.ListFeatured(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestIncrementViews_Success(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE listings`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := service.IncrementViews(context.Background(), listingUUID)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestIncrementViews_NotFound(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE listings`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := service.IncrementViews(context.Background(), listingUUID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRemove_NonOwnerIsUnauthorized(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	store := &stubStorage{}
	service := newTestService(t, mockPool, store)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(listingRow(listingUUID, sellerUUID, "Charizard card", 50, "listing-images/2025/03/01/img.jpg"))

	err := service.Remove(context.Background(), auth.UserInfo{ID: otherUUID}, listingUUID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))
	// Neither the record nor its image may be touched.
	assert.Empty(t, store.deleteKeys)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRemove_AbsentIsNotFound(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	service := newTestService(t, mockPool, nil)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	err := service.Remove(context.Background(), auth.UserInfo{ID: sellerUUID}, listingUUID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRemove_OwnerDeletesRecordAndImage(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	store := &stubStorage{}
	service := newTestService(t, mockPool, store)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(listingRow(listingUUID, sellerUUID, "Charizard card", 50,
			"https://files.example.com/listing-images/2025/03/01/img.jpg"))

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM listings`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := service.Remove(context.Background(), auth.UserInfo{ID: sellerUUID}, listingUUID)
	require.NoError(t, err)
	require.Len(t, store.deleteKeys, 1)
	assert.Equal(t, "2025/03/01/img.jpg", store.deleteKeys[0])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRemove_ImageDeleteFailureIsSwallowed(t *testing.T) {
	mockPool := testutil.NewMockDB(t)
	store := &stubStorage{deleteErr: assert.AnError}
	service := newTestService(t, mockPool, store)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(listingRow(listingUUID, sellerUUID, "Charizard card", 50, "listing-images/img.jpg"))

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM listings`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := service.Remove(context.Background(), auth.UserInfo{ID: sellerUUID}, listingUUID)
	assert.NoError(t, err, "record deletion must succeed even when image cleanup fails")
	assert.Len(t, store.deleteKeys, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
