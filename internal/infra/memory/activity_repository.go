package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ActivityLoader fetches the activity catalog from a backing store.
type ActivityLoader interface {
	LoadActivities(ctx context.Context) ([]domain.Activity, error)
}

// ActivityRepository caches the catalog with a TTL so question generation
// does not hit the database for every new session.
type ActivityRepository struct {
	loader ActivityLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   []domain.Activity
	expiresAt time.Time
}

func NewActivityRepository(loader ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ActivityRepository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	now := r.clock()

	r.mu.RLock()
	if r.catalog != nil && r.expiresAt.After(now) {
		catalog := r.catalog
		r.mu.RUnlock()
		return catalog, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("activities", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.catalog != nil && r.expiresAt.After(now) {
			catalog := r.catalog
			r.mu.RUnlock()
			return catalog, nil
		}
		r.mu.RUnlock()

		catalog, err := r.loader.LoadActivities(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.catalog = catalog
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Activity), nil
}

func (r *ActivityRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticActivityLoader serves a fixed catalog (tests, demos, running
// without Postgres).
type StaticActivityLoader struct {
	catalog []domain.Activity
}

func NewStaticActivityLoader(catalog []domain.Activity) *StaticActivityLoader {
	return &StaticActivityLoader{catalog: catalog}
}

func (l *StaticActivityLoader) LoadActivities(_ context.Context) ([]domain.Activity, error) {
	return l.catalog, nil
}
