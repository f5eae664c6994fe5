package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		UserID: "user-001",
		Items: []domain.CartItem{
			{
				ProductID: "prod-1",
				Name:      "Widget",
				Price:     1990,
				Quantity:  2,
				ImageURL:  "https://img.example.com/w.jpg",
			},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	// Set data directly in miniredis.
	require.NoError(t, mr.Set("cart:"+cart.UserID, string(data)))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, got.UserID)
	assert.Equal(t, cart.Version, got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.Equal(t, int64(1990), got.Items[0].Price)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nobody")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_CorruptData(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:user-001", "{not json"))

	got, err := repo.Get(context.Background(), "user-001")
	assert.Nil(t, got)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestCartRepository_Save_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.Items, got.Items)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	ttl := mr.TTL("cart:" + cart.UserID)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestCartRepository_Save_Overwrites(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	cart.Items[0].Quantity = 5
	require.NoError(t, repo.Save(context.Background(), cart))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))
	require.NoError(t, repo.Delete(context.Background(), cart.UserID))

	assert.False(t, mr.Exists("cart:"+cart.UserID))
}

func TestCartRepository_Delete_AbsentIsIdempotent(t *testing.T) {
	repo, _ := setupTestRedis(t)

	assert.NoError(t, repo.Delete(context.Background(), "nobody"))
	assert.NoError(t, repo.Delete(context.Background(), "nobody"))
}
