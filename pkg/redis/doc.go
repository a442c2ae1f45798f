// Package redis provides Redis connection plumbing for the Redis-backed
// notification store: client construction with retries and a health
// check closure.
//
// Typical wiring:
//
//	cfg := redis.Config{ConnectionURL: os.Getenv("REDIS_URL")}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // Handle connection error
//	}
//	defer client.Close()
//
//	storage, err := notifications.NewRedisStorage(client)
package redis
