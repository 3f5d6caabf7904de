package config

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis backs the analytics response cache. The API degrades to uncached
// reads when the client is absent, so startup never fails on Redis.
var Redis *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, analytics caching disabled")
		return
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: Redis unreachable (%v), analytics caching disabled", err)
		Redis = nil
		return
	}

	log.Println("Redis connected successfully")
}
