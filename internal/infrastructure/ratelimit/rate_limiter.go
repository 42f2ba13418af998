package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"virtualitems/pkg/errors"
)

const (
	DefaultPurchasesPerMinute = 10

	maxTrackedUsers = 10000
	limiterTTL      = 10 * time.Minute
)

// PurchaseLimiter throttles purchase requests per user and holds at most one
// pending purchase per user and item.
type PurchaseLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int

	mutex    sync.Mutex
	inFlight map[string]struct{}
}

func NewPurchaseLimiter(perMinute int) *PurchaseLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPurchasesPerMinute
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &PurchaseLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedUsers, nil, limiterTTL),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		inFlight: make(map[string]struct{}),
	}
}

// Allow consumes one token for userID or fails with TOO_MANY_REQUESTS.
func (l *PurchaseLimiter) Allow(userID string) error {
	l.mutex.Lock()
	limiter, ok := l.limiters.Get(userID)
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters.Add(userID, limiter)
	}
	l.mutex.Unlock()

	if !limiter.Allow() {
		return errors.TooManyRequests("too many purchase requests, try again later")
	}
	return nil
}

// Acquire marks a purchase of itemID by userID as pending. The returned release must be
// called once the purchase reaches a terminal state.
func (l *PurchaseLimiter) Acquire(userID, itemID string) (func(), error) {
	key := userID + ":" + itemID

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, busy := l.inFlight[key]; busy {
		return nil, errors.Conflict("a purchase of this item is already pending")
	}
	l.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mutex.Lock()
			delete(l.inFlight, key)
			l.mutex.Unlock()
		})
	}, nil
}
