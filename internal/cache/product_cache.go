package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/redis/go-redis/v9"
)

const (
	allProductsKey  = "products:all"
	notFoundMarker  = "notfound"
	notFoundTTL     = time.Minute
	operationWindow = 2 * time.Second
)

// CachedProductRepository is a read-through Redis cache in front of a ProductRepository.
// Cache failures are logged and fall back to the wrapped repository.
type CachedProductRepository struct {
	realRepo repositories.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

// NewCachedProductRepository wraps realRepo. A non-positive ttl defaults to five minutes.
func NewCachedProductRepository(realRepo repositories.ProductRepository, client *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    client,
		ttl:      ttl,
	}
}

// Connect opens a Redis client and checks it with PING.
func Connect(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func productKey(id string) string {
	return "product:" + id
}

func (c *CachedProductRepository) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), operationWindow)
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal %s for cache: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id string) {
	keys := []string{allProductsKey}
	if id != "" {
		keys = append(keys, productKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate product cache %v: %v", keys, err)
	}
}

// GetAll returns the cached catalog or loads and caches it.
func (c *CachedProductRepository) GetAll() ([]models.Product, error) {
	ctx, cancel := c.opContext()
	defer cancel()

	data, err := c.redis.Get(ctx, allProductsKey).Bytes()
	switch {
	case err == nil:
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Printf("Failed to unmarshal cached catalog (continuing with DB): %v", err)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	products, err := c.realRepo.GetAll()
	if err != nil {
		return nil, err
	}
	c.store(ctx, allProductsKey, products)
	return products, nil
}

// GetByID returns the cached product or loads and caches it. Misses are
// remembered briefly so unknown ids do not hit the database repeatedly.
func (c *CachedProductRepository) GetByID(id string) (*models.Product, error) {
	ctx, cancel := c.opContext()
	defer cancel()
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, fmt.Errorf("product with ID %s: %w", id, repositories.ErrNotFound)
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		log.Printf("Failed to unmarshal cached product (continuing with DB): %v", err)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	product, err := c.realRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				log.Printf("Failed to cache notfound: %v", setErr)
			}
		}
		return nil, err
	}
	c.store(ctx, key, product)
	return product, nil
}

// Create stores the product and drops the cached catalog.
func (c *CachedProductRepository) Create(product *models.Product) error {
	if err := c.realRepo.Create(product); err != nil {
		return err
	}
	ctx, cancel := c.opContext()
	defer cancel()
	c.invalidate(ctx, product.ID)
	return nil
}

// Update writes through and invalidates the product and catalog entries.
func (c *CachedProductRepository) Update(product *models.Product) error {
	err := c.realRepo.Update(product)
	ctx, cancel := c.opContext()
	defer cancel()
	c.invalidate(ctx, product.ID)
	return err
}

// Delete removes the product and invalidates its cache entries.
func (c *CachedProductRepository) Delete(id string) error {
	err := c.realRepo.Delete(id)
	ctx, cancel := c.opContext()
	defer cancel()
	c.invalidate(ctx, id)
	return err
}
