package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client used for ingest-event pub/sub. The registry
// only ever talks to an unauthenticated redis, so the config carries no
// password.
func NewRedis(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}
