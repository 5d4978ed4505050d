package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
	"esim-storefront/internal/infra/metrics"
	red "esim-storefront/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches the plan catalog in Redis. Checkout reads
// every plan on the hot path, and the catalog changes rarely.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	key := fmt.Sprintf("plan:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan", "hit")
		var plan model.Plan
		if json.Unmarshal([]byte(val), &plan) == nil {
			return &plan, nil
		}
	} else if err != redis.Nil {
		// Redis errors degrade to a miss; the database stays authoritative.
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		bytes, _ := json.Marshal(plan)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return plan, nil
}

// Write operations invalidate both the single-plan key and every cached listing.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	d.cache.Del(ctx, fmt.Sprintf("plan:%s", plan.ID))
	d.invalidateListings(ctx)
	return d.inner.Save(ctx, tx, plan)
}

func (d *planRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	d.cache.Del(ctx, fmt.Sprintf("plan:%s", id))
	d.invalidateListings(ctx)
	return d.inner.Delete(ctx, tx, id)
}

func (d *planRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx, filter repository.PlanFilter) ([]*model.Plan, error) {
	key := listKey(filter)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan_list", "hit")
		var plans []*model.Plan
		if json.Unmarshal([]byte(val), &plans) == nil {
			return plans, nil
		}
	}

	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := d.inner.ListActive(ctx, tx, filter)
	if err != nil {
		return nil, err
	}
	bytes, _ := json.Marshal(plans)
	d.cache.Set(ctx, key, bytes, d.ttl)
	d.rememberListKey(ctx, key)
	return plans, nil
}

func listKey(filter repository.PlanFilter) string {
	return fmt.Sprintf("plans:active:%s:%s", filter.Country, filter.Region)
}

// Listing keys vary by filter, so invalidation tracks the keys handed out.
func (d *planRepoCacheDecorator) rememberListKey(ctx context.Context, key string) {
	val, err := d.cache.Get(ctx, "plans:list_keys")
	var keys []string
	if err == nil {
		_ = json.Unmarshal([]byte(val), &keys)
	}
	for _, k := range keys {
		if k == key {
			return
		}
	}
	keys = append(keys, key)
	bytes, _ := json.Marshal(keys)
	d.cache.Set(ctx, "plans:list_keys", bytes, d.ttl)
}

func (d *planRepoCacheDecorator) invalidateListings(ctx context.Context) {
	val, err := d.cache.Get(ctx, "plans:list_keys")
	if err != nil {
		return
	}
	var keys []string
	if json.Unmarshal([]byte(val), &keys) != nil {
		return
	}
	keys = append(keys, "plans:list_keys")
	d.cache.Del(ctx, keys...)
}
