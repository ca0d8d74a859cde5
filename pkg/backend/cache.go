package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/otelhelper"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// KeyPrefix namespaces cached responses.
const KeyPrefix = "genflow:gen:"

// Store keeps cached backend responses.
type Store interface {
	// Get reports false without an error on a cache miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore is a Store on top of a redis client.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

type cachedBackend struct {
	next   protocol.Backend
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// Cached serves repeated text-only structured requests from store. Responses
// are written only through Commit, once the orchestrator accepted them. Store
// errors are logged and the call goes to next.
func Cached(next protocol.Backend, store Store, ttl time.Duration, logger *slog.Logger) protocol.Backend {
	return &cachedBackend{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("module", "backend_cache"),
	}
}

// Cacheable reports whether responses to req may be cached.
func Cacheable(req *models.GenerationRequest) bool {
	return req.Structured() && !req.WantsMedia() && len(req.Media) == 0
}

// CacheKey derives the cache key of a request.
func CacheKey(req *models.GenerationRequest) (string, error) {
	canonical, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)

	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}

func (b *cachedBackend) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	if !Cacheable(req) {
		return b.next.Generate(ctx, req)
	}

	key, err := CacheKey(req)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to derive cache key", "flow", req.Flow, "error", err)

		return b.next.Generate(ctx, req)
	}

	resp, hit := b.lookup(ctx, key, req.Flow)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(otelhelper.CacheHitKey, hit))

	if hit {
		return resp, nil
	}

	return b.next.Generate(ctx, req)
}

// Commit stores a response the caller accepted. Failed or empty responses are
// never committed.
func (b *cachedBackend) Commit(ctx context.Context, req *models.GenerationRequest, resp *models.GenerationResponse) {
	if !Cacheable(req) || resp.Empty() {
		return
	}

	key, err := CacheKey(req)
	if err == nil {
		var payload []byte

		payload, err = json.Marshal(resp)
		if err == nil {
			err = b.store.Set(ctx, key, payload, b.ttl)
		}
	}

	if err != nil {
		b.logger.WarnContext(ctx, "failed to cache backend response", "flow", req.Flow, "error", err)
	}
}

func (b *cachedBackend) lookup(ctx context.Context, key, flow string) (*models.GenerationResponse, bool) {
	payload, found, err := b.store.Get(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "cache lookup failed", "flow", flow, "error", err)

		return nil, false
	}

	if !found {
		return nil, false
	}

	var resp models.GenerationResponse
	if err := json.Unmarshal(payload, &resp); err != nil || resp.Empty() {
		b.logger.WarnContext(ctx, "discarding unreadable cache entry", "flow", flow, "key", key)

		return nil, false
	}

	b.logger.DebugContext(ctx, "serving cached backend response", "flow", flow)

	return &resp, true
}
