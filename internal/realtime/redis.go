package realtime

import (
	"log"

	"github.com/redis/go-redis/v9"
)

func NewRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	log.Printf("[realtime] redis client created (addr: %s)", addr)
	return rdb
}
