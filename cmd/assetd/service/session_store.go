package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	rediscommon "github.com/creatorhub/assetd/common/redis"
)

// ErrSessionNotFound means no upload session exists for the asset id
var ErrSessionNotFound = errors.New("upload session not found")

// SessionStore keeps the bookkeeping for in-flight chunked uploads. The
// byte-level state is the accumulation file on disk; the store tracks the
// next expected chunk index, the declared size, and a creation timestamp
// for the orphan sweeper. Lock serializes chunk appends per asset so two
// concurrent calls for the same asset id cannot interleave writes.
type SessionStore interface {
	Create(ctx context.Context, session *models.UploadSession) error
	Get(ctx context.Context, assetID string) (*models.UploadSession, error)
	Update(ctx context.Context, session *models.UploadSession) error
	Delete(ctx context.Context, assetID string) error
	List(ctx context.Context) ([]string, error)
	Lock(ctx context.Context, assetID string) (func(), error)
}

// MemorySessionStore is the dev/test implementation, mirroring the in-memory
// queue: good for a single process, replaced by Redis in production.
type MemorySessionStore struct {
	sessions map[string]*models.UploadSession
	locks    map[string]*sync.Mutex
	mu       sync.Mutex
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.UploadSession),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Create stores a new session
func (s *MemorySessionStore) Create(ctx context.Context, session *models.UploadSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.AssetID] = &copied
	return nil
}

// Get retrieves a session by asset id
func (s *MemorySessionStore) Get(ctx context.Context, assetID string) (*models.UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[assetID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// Update overwrites an existing session
func (s *MemorySessionStore) Update(ctx context.Context, session *models.UploadSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.AssetID]; !ok {
		return ErrSessionNotFound
	}

	copied := *session
	s.sessions[session.AssetID] = &copied
	return nil
}

// Delete removes a session and its lock
func (s *MemorySessionStore) Delete(ctx context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, assetID)
	delete(s.locks, assetID)
	return nil
}

// List returns the asset ids of all open sessions
func (s *MemorySessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Lock acquires the per-asset mutex
func (s *MemorySessionStore) Lock(ctx context.Context, assetID string) (func(), error) {
	s.mu.Lock()
	lock, ok := s.locks[assetID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[assetID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock, nil
}

// Redis key layout for the session store
const (
	redisSessionKeyPrefix = "upload:session:"
	redisSessionIndexKey  = "upload:sessions"
	redisLockKeyPrefix    = "upload:lock:"
	redisLockTTL          = 30 * time.Second
)

// RedisSessionStore backs sessions with Redis so the chunk receiver stays
// stateless and horizontally replicable. The per-asset lock is a SETNX
// lease with a TTL, so a crashed holder cannot wedge an upload forever.
type RedisSessionStore struct {
	redis *rediscommon.Client
	ttl   time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store. ttl bounds how
// long an abandoned session's record lingers; the sweeper removes the temp
// artifact on disk within the same bound.
func NewRedisSessionStore(client *rediscommon.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		redis: client,
		ttl:   ttl,
	}
}

func (s *RedisSessionStore) sessionKey(assetID string) string {
	return redisSessionKeyPrefix + assetID
}

// Create stores a new session
func (s *RedisSessionStore) Create(ctx context.Context, session *models.UploadSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redis.SetWithExpiry(ctx, s.sessionKey(session.AssetID), string(payload), s.ttl); err != nil {
		return err
	}

	return s.redis.AddToSet(ctx, redisSessionIndexKey, session.AssetID)
}

// Get retrieves a session by asset id
func (s *RedisSessionStore) Get(ctx context.Context, assetID string) (*models.UploadSession, error) {
	payload, err := s.redis.Get(ctx, s.sessionKey(assetID))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	session := &models.UploadSession{}
	if err := json.Unmarshal([]byte(payload), session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return session, nil
}

// Update overwrites an existing session, preserving the remaining TTL window
// by re-arming it from now
func (s *RedisSessionStore) Update(ctx context.Context, session *models.UploadSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.redis.SetWithExpiry(ctx, s.sessionKey(session.AssetID), string(payload), s.ttl)
}

// Delete removes a session record and its index entry
func (s *RedisSessionStore) Delete(ctx context.Context, assetID string) error {
	if err := s.redis.Delete(ctx, s.sessionKey(assetID)); err != nil {
		return err
	}
	return s.redis.RemoveFromSet(ctx, redisSessionIndexKey, assetID)
}

// List returns the asset ids of all open sessions
func (s *RedisSessionStore) List(ctx context.Context) ([]string, error) {
	return s.redis.SetMembers(ctx, redisSessionIndexKey)
}

// Lock acquires a SETNX lease for the asset. Contention is not expected
// (clients serialize their own chunk calls), so it fails fast rather
// than spinning.
func (s *RedisSessionStore) Lock(ctx context.Context, assetID string) (func(), error) {
	key := redisLockKeyPrefix + assetID

	acquired, err := s.redis.SetNX(ctx, key, "1", redisLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("upload %s is locked by a concurrent request", assetID)
	}

	return func() {
		_ = s.redis.Delete(context.Background(), key)
	}, nil
}
