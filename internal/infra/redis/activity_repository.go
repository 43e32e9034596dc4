package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ActivityLoader fetches the activity catalog from a backing store.
type ActivityLoader interface {
	LoadActivities(ctx context.Context) ([]domain.Activity, error)
}

// ActivityRepository caches the catalog as a Redis hash (field = activity
// id, value = JSON) shared across service instances, falling back to the
// loader on a miss.
type ActivityRepository struct {
	client *redis.Client
	loader ActivityLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const catalogKey = "activities:catalog"

func NewActivityRepository(client *redis.Client, loader ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ActivityRepository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	cached, err := r.client.HGetAll(ctx, catalogKey).Result()
	if err == nil && len(cached) > 0 {
		return decodeCatalog(cached)
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		cached, err := r.client.HGetAll(ctx, catalogKey).Result()
		if err == nil && len(cached) > 0 {
			return decodeCatalog(cached)
		}

		catalog, err := r.loader.LoadActivities(ctx)
		if err != nil {
			return nil, err
		}

		pipe := r.client.Pipeline()
		for _, activity := range catalog {
			data, err := json.Marshal(activity)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, catalogKey, activity.ID, data)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, catalogKey, r.ttlWithJitter())
		}
		_, _ = pipe.Exec(ctx)

		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Activity), nil
}

func decodeCatalog(cached map[string]string) ([]domain.Activity, error) {
	catalog := make([]domain.Activity, 0, len(cached))
	for _, raw := range cached {
		var activity domain.Activity
		if err := json.Unmarshal([]byte(raw), &activity); err != nil {
			return nil, err
		}
		catalog = append(catalog, activity)
	}
	// Hash iteration order is random; question generation needs a stable
	// catalog order to stay deterministic per seed.
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID < catalog[j].ID })
	return catalog, nil
}

func (r *ActivityRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
