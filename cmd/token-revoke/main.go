package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const scanCount = 100

func main() {
	var (
		redisURL = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		userID   = flag.String("user", "", "User ID whose tokens should be revoked")
		dryRun   = flag.Bool("dry-run", false, "Dry run mode (don't write to Redis)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}
	if *userID == "" {
		log.Fatal("User ID required (--user)")
	}
	if _, err := uuid.Parse(*userID); err != nil {
		log.Fatalf("Invalid user ID: %v", err)
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	// Connect to Redis
	opts, err := goredis.ParseURL(*redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	slog.Info("Connected to Redis", "url", sanitizeURL(*redisURL))

	if err := revokeUserTokens(ctx, rdb, *userID, *dryRun); err != nil {
		log.Fatalf("Revocation failed: %v", err)
	}

	slog.Info("Revocation complete")
}

// revokeUserTokens deletes every token owned by userID. Tokens are keyed by
// their own value, so finding a user's sessions means a full scan.
func revokeUserTokens(ctx context.Context, rdb *goredis.Client, userID string, dryRun bool) error {
	start := time.Now()
	var cursor uint64
	var scanned, revoked int

	slog.Info("Starting revocation", "user_id", userID, "dry_run", dryRun)

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, "token:*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		for _, key := range keys {
			scanned++

			owner, err := rdb.Get(ctx, key).Result()
			if err == goredis.Nil {
				// Expired between scan and read
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", key, err)
			}

			if owner != userID {
				continue
			}

			if !dryRun {
				if err := rdb.Del(ctx, key).Err(); err != nil {
					return fmt.Errorf("del failed for %s: %w", key, err)
				}
			}

			slog.Debug("Revoked token", "key", key)
			revoked++
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	duration := time.Since(start)
	slog.Info("Revocation summary",
		"scanned", scanned,
		"revoked", revoked,
		"duration_ms", duration.Milliseconds())

	return nil
}

func sanitizeURL(url string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return url
}
