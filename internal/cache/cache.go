package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// KeyPrefix namespaces every factlens cache key
const KeyPrefix = "factlens:v1:"

// Cache stores serialized analysis results
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key derives the cache key for a request. The key covers the response
// contract version, the mode and the submitted content; a page excerpt
// fetched for URL input is not part of it.
func Key(req *model.AnalysisRequest, contractVersion string) string {
	h := sha256.New()
	field := func(b []byte) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(b)))
		h.Write(n[:])
		h.Write(b)
	}

	field([]byte(contractVersion))
	field([]byte(req.Mode))
	field([]byte(req.PrimaryText))
	if req.Media != nil {
		field([]byte(req.Media.MimeType))
		field(req.Media.Data)
	}

	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache selected by cfg. It returns nil when caching is disabled.
func New(ctx context.Context, cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.TTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.TTL), nil
	case "layered":
		return NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL), nil
	case "redis":
		rc := NewRedisCache(cfg.RedisAddr, cfg.TTL)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (supported: memory, disk, layered, redis)", cfg.Backend)
	}
}
