package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/sentinel/internal/adapters/file"
	"github.com/aretw0/sentinel/pkg/adapters/memory"
	"github.com/aretw0/sentinel/pkg/adapters/redis"
	"github.com/aretw0/sentinel/pkg/config"
	"github.com/aretw0/sentinel/pkg/persistence/middleware"
	"github.com/aretw0/sentinel/pkg/ports"
)

// Pruner drops expired transcripts and reports how many went.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Storage is the transcript backend chosen from settings.
type Storage struct {
	Kind string

	// Store is the backend wrapped in the configured middlewares.
	Store  ports.TranscriptStore
	Locker ports.DistributedLocker

	// Pruner is nil when the backend never expires entries.
	Pruner Pruner

	close func() error
}

// Close releases the backend.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage picks redis when an address is configured, otherwise the fallback kind.
// Encryption wraps the backend first; PII masking runs before it so masked text is what gets sealed.
func OpenStorage(settings *config.Settings, fallback StoreKind, logger *slog.Logger) (*Storage, error) {
	st := &Storage{}

	switch {
	case settings.RedisAddr != "":
		rs := redis.New(settings.RedisAddr, settings.RedisPassword, settings.RedisDB, redis.WithTTL(settings.SessionTTL))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", settings.RedisAddr, err)
		}
		st.Kind = "redis"
		st.Store = rs
		st.Locker = redis.NewLocker(rs.Client(), "sentinel:")
		st.Pruner = rs
		st.close = rs.Close
		logger.Debug("using redis store", "addr", settings.RedisAddr, "db", settings.RedisDB)

	case fallback == StoreFile:
		st.Kind = "file"
		st.Store = file.New(settings.SessionDir)
		logger.Debug("using file store", "dir", settings.SessionDir)

	default:
		ms := memory.NewStore(memory.WithTTL(settings.SessionTTL))
		st.Kind = "memory"
		st.Store = ms
		st.Pruner = ms
	}

	var mws []middleware.Middleware
	if settings.MaskPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	key, err := settings.Key()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	st.Store = middleware.Chain(st.Store, mws...)

	return st, nil
}
