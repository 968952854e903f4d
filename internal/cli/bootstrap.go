package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	identityapp "github.com/chiclet/backend/internal/application/identity"
	"github.com/chiclet/backend/internal/infrastructure/auth"
	"github.com/chiclet/backend/internal/infrastructure/cache"
	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/infrastructure/persistence"
)

// OpenFromConfig builds the user service against the configured database.
// When redis is enabled, deactivating a user also revokes their live
// sessions in the shared blacklist.
func OpenFromConfig(ctx context.Context, log *zap.Logger) (AdminUsers, func(), error) {
	log = logger.OrNop(log)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.GormLevel("warn"), 0))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closers := []func(){func() { _ = db.Close() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		blacklist = auth.NewRedisTokenBlacklist(client)
	} else {
		log.Warn("Redis disabled; deactivated users keep their sessions until expiry")
	}

	users := identityapp.NewUserService(
		persistence.NewGormUserRepository(db.DB),
		blacklist,
		cfg.JWT.RefreshTokenExpiration,
		nil,
		log,
	)
	return users, closeAll, nil
}
