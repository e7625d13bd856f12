package redis

import (
	"context"

	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli   *redis.Client
	utils *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	rutils := gredis.NewRedisUtils(rdb)

	return &DB{
		cli:   rdb,
		utils: rutils,
	}
}

// Client returns the raw go-redis client for list and ping operations.
func (d *DB) Client() *redis.Client {
	return d.cli
}

// Utils returns the go-redis utils helper.
func (d *DB) Utils() *gredis.Utils {
	return d.utils
}

// Ping verifies the redis server is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.cli.Ping(ctx).Err()
}
