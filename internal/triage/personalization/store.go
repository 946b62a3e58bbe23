package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrProfileStore = errors.New("PROFILE_STORE_FAILED")

const (
	ProfileKeyPrefix = "triage:profile:"
	maxWatchRetries  = 3
)

// ProfileStore persists user profiles. Get returns a fresh empty profile for unknown users.
// Update runs fn on the current profile with writes for the same user serialized.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Update(ctx context.Context, userID string, fn func(*UserProfile) error) (*UserProfile, error)
}

// MemoryStore keeps profiles for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
	locks    *userLocks
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*UserProfile),
		locks:    newUserLocks(),
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p.clone(), nil
	}
	return NewUserProfile(userID), nil
}

func (s *MemoryStore) Update(ctx context.Context, userID string, fn func(*UserProfile) error) (*UserProfile, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, _ := s.Get(ctx, userID)
	if err := fn(current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profiles[userID] = current.clone()
	s.mu.Unlock()
	return current, nil
}

// Len reports how many users have a stored profile.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// RedisStore keeps each profile as JSON under ProfileKeyPrefix+userID. Every write
// refreshes the TTL so idle profiles expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *userLocks
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, locks: newUserLocks()}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	return s.read(ctx, s.client, userID)
}

func (s *RedisStore) Update(ctx context.Context, userID string, fn func(*UserProfile) error) (*UserProfile, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	key := ProfileKeyPrefix + userID
	var result *UserProfile

	txf := func(tx *redis.Tx) error {
		profile, err := s.read(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := fn(profile); err != nil {
			return err
		}
		data, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = profile
		}
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: concurrent updates for user %s", ErrProfileStore, userID)
}

func (s *RedisStore) read(ctx context.Context, c getter, userID string) (*UserProfile, error) {
	val, err := c.Get(ctx, ProfileKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return NewUserProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileStore, err)
	}
	profile := NewUserProfile(userID)
	if err := json.Unmarshal([]byte(val), profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrProfileStore, err)
	}
	if profile.Preferences.Ratings == nil {
		profile.Preferences.Ratings = map[string]float64{}
	}
	return profile, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// userLocks hands out one mutex per user and drops it once nobody holds or waits on it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*refLock)}
}

func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &refLock{}
		u.locks[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userID)
		}
		u.mu.Unlock()
	}
}
