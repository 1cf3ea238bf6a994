package config

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	lockClient  *redislock.Client
)

func GetRedisClient() *redis.Client {
	return redisClient
}

// GetLockClient returns the redislock client, or nil when Redis is not
// configured. Callers must treat a nil locker as "no distributed locking".
func GetLockClient() *redislock.Client {
	return lockClient
}

// ConnectRedis dials Redis using REDISHOST/REDISPORT. Redis is optional:
// when the env vars are absent the client stays nil and every cache helper
// below degrades to a no-op.
func ConnectRedis() {
	redisHost := os.Getenv("REDISHOST")
	redisPort := os.Getenv("REDISPORT")
	if redisHost == "" || redisPort == "" {
		log.Println("redis not configured; caching and distributed locks disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisHost + ":" + redisPort,
		Password: os.Getenv("REDISPASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("failed to connect redis at %s:%s: %v; continuing without cache", redisHost, redisPort, err)
		return
	}

	redisClient = client
	lockClient = redislock.New(client)
	log.Printf("connected to redis at %s:%s", redisHost, redisPort)
}

// GetRedisObject loads a cached JSON object into dest. Returns false on a
// miss, on unmarshal failure, or when Redis is not configured.
func GetRedisObject(ctx context.Context, key string, dest any) bool {
	if redisClient == nil {
		return false
	}
	payload, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false
	}
	return true
}

// SetRedisObject stores value as JSON under key with a TTL. Best effort.
func SetRedisObject(ctx context.Context, key string, value any, ttl time.Duration) {
	if redisClient == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	redisClient.Set(ctx, key, payload, ttl)
}

// RemoveRedisKey drops cached keys after a write. Best effort.
func RemoveRedisKey(ctx context.Context, keys ...string) {
	if redisClient == nil || len(keys) == 0 {
		return
	}
	redisClient.Del(ctx, keys...)
}
