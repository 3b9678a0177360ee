package cache

import (
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedRepo(t *testing.T) (*CachedProductRepository, *repositories.MockProductRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backing := repositories.NewMockProductRepository()
	return NewCachedProductRepository(backing, client, time.Minute), backing, mr
}

func TestCachedProductRepository_GetByIDReadsThrough(t *testing.T) {
	repo, backing, mr := newCachedRepo(t)

	product := &models.Product{Name: "Mug", Price: 9.5, Category: "Kitchen", Stock: 3}
	require.NoError(t, backing.Create(product))

	got, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
	assert.True(t, mr.Exists("product:"+product.ID))

	// Served from cache even after the backing row disappears.
	require.NoError(t, backing.Delete(product.ID))
	got, err = repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
}

func TestCachedProductRepository_RemembersMisses(t *testing.T) {
	repo, _, mr := newCachedRepo(t)

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	cached, err := mr.Get("product:missing")
	require.NoError(t, err)
	assert.Equal(t, notFoundMarker, cached)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCachedProductRepository_WritesInvalidate(t *testing.T) {
	repo, _, mr := newCachedRepo(t)

	product := &models.Product{Name: "Pen", Price: 10, Category: "Office", Stock: 5}
	require.NoError(t, repo.Create(product))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, mr.Exists(allProductsKey))
	_, err = repo.GetByID(product.ID)
	require.NoError(t, err)

	product.Price = 12
	require.NoError(t, repo.Update(product))
	assert.False(t, mr.Exists(allProductsKey))
	assert.False(t, mr.Exists("product:"+product.ID))

	got, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Price)

	require.NoError(t, repo.Delete(product.ID))
	_, err = repo.GetByID(product.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCachedProductRepository_FallsBackWhenRedisIsDown(t *testing.T) {
	repo, backing, mr := newCachedRepo(t)
	product := &models.Product{Name: "Lamp", Price: 20, Category: "Home", Stock: 1}
	require.NoError(t, backing.Create(product))

	mr.Close()

	got, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
}
