package cache

import (
	"context"
	"encoding/json"
	"errors"

	"ip-lookup/db"
	"ip-lookup/internal/logger"
	"ip-lookup/internal/metrics"
	"ip-lookup/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "iprecord:"

// OpenRedis returns a client for addr, or nil when addr is empty
func OpenRedis(addr, password string, database int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: database})
}

// RecordCache keeps persisted records in Redis in front of a repository.
// Records never change once stored, so entries carry no expiry.
// Redis failures are logged and the repository answers instead.
type RecordCache struct {
	db.IPRecordRepository
	rc *redis.Client
}

// NewRecordCache wraps repo. With a nil client the repository is returned as is.
func NewRecordCache(repo db.IPRecordRepository, rc *redis.Client) db.IPRecordRepository {
	if rc == nil {
		return repo
	}
	return &RecordCache{IPRecordRepository: repo, rc: rc}
}

func key(ip string) string { return keyPrefix + ip }

// FindByIP answers from Redis when possible and fills it on a store hit
func (c *RecordCache) FindByIP(ctx context.Context, ip string) (*models.IPRecord, error) {
	s, err := c.rc.Get(ctx, key(ip)).Result()
	switch {
	case err == nil:
		var rec models.IPRecord
		if jerr := json.Unmarshal([]byte(s), &rec); jerr == nil {
			metrics.RedisHitsTotal.Inc()
			return &rec, nil
		}
		logger.L().Warn("redis_bad_entry", zap.String("ip", ip))
	case !errors.Is(err, redis.Nil):
		logger.L().Warn("redis_get_failed", zap.String("ip", ip), zap.Error(err))
	}
	metrics.RedisMissesTotal.Inc()

	rec, err := c.IPRecordRepository.FindByIP(ctx, ip)
	if err != nil {
		return nil, err
	}
	c.store(ctx, rec)
	return rec, nil
}

// Insert writes through to the repository, then caches the stored record
func (c *RecordCache) Insert(ctx context.Context, record *models.IPRecord) (*models.IPRecord, error) {
	rec, err := c.IPRecordRepository.Insert(ctx, record)
	if err != nil {
		return nil, err
	}
	c.store(ctx, rec)
	return rec, nil
}

// Close closes the repository and the redis client
func (c *RecordCache) Close() error {
	return errors.Join(c.IPRecordRepository.Close(), c.rc.Close())
}

func (c *RecordCache) store(ctx context.Context, rec *models.IPRecord) {
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.rc.Set(ctx, key(rec.IPAddress), b, 0).Err(); err != nil {
		logger.L().Warn("redis_set_failed", zap.String("ip", rec.IPAddress), zap.Error(err))
	}
}
