package main

import (
	"context"
	"fmt"
	"net/http"

	"ip-lookup/db"
	"ip-lookup/internal/cache"
	"ip-lookup/internal/config"
	"ip-lookup/internal/logger"
	"ip-lookup/internal/resolver"

	"go.uber.org/zap"
)

const recordCollection = "ip_records"

// openStore connects to the backend named by typ, prepares its schema and
// returns the record repository. Closing the repository releases the connection.
func openStore(ctx context.Context, cfg *config.Config, typ config.DatabaseType) (db.IPRecordRepository, error) {
	switch typ {
	case config.SQLite:
		conn, err := db.ConnectToSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeSchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
		repo := db.NewRepositoryFactory(conn, nil, nil, cfg.DatabaseName).NewIPRecordRepository()
		return db.NewSerializedIPRecordRepository(repo, db.NewDBManager()), nil

	case config.Postgres:
		conn, err := db.ConnectToPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := db.InitializePostgresSchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return db.NewRepositoryFactory(nil, conn, nil, cfg.DatabaseName).NewIPRecordRepository(), nil

	case config.MongoDB:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is not set")
		}
		client, err := db.ConnectToMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureMongoIndexes(ctx, client, cfg.DatabaseName, recordCollection); err != nil {
			client.Disconnect(context.Background())
			return nil, err
		}
		return db.NewRepositoryFactory(nil, nil, client, cfg.DatabaseName).NewIPRecordRepository(), nil
	}
	return nil, typ.Validate()
}

// openCachedStore is openStore for the configured backend with the Redis
// record cache in front when REDIS_ADDR is set.
func openCachedStore(ctx context.Context, cfg *config.Config) (db.IPRecordRepository, error) {
	repo, err := openStore(ctx, cfg, cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	rc := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rc == nil {
		return repo, nil
	}
	if err := rc.Ping(ctx).Err(); err != nil {
		// the store alone is still correct
		logger.L().Warn("redis_unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return cache.NewRecordCache(repo, rc), nil
}

type closeFunc func() error

// openResolver builds the configured resolver
func openResolver(cfg *config.Config) (resolver.Resolver, closeFunc, error) {
	switch cfg.ResolverType {
	case config.ResolverMaxMind:
		mm, err := resolver.OpenMaxMindResolver(cfg.MaxMindCityDB, cfg.MaxMindISPDB)
		if err != nil {
			return nil, nil, err
		}
		return mm, mm.Close, nil
	case config.ResolverHTTP, "":
		client := &http.Client{Timeout: cfg.ResolverTimeout}
		return resolver.NewHTTPResolver(cfg.ResolverBaseURL, client), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unsupported RESOLVER_TYPE: %s", cfg.ResolverType)
}
