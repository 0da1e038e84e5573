package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/duogate/internal/ports"
)

var _ ports.ReplayGuard = (*ReplayGuard)(nil)

// ReplayGuard remembers claimed authorization codes with SETNX so a code is accepted once.
// Only a digest of the key is stored.
type ReplayGuard struct {
	client redis.UniversalClient
	prefix string
}

// NewReplayGuard creates a ReplayGuard using the default key prefix.
func NewReplayGuard(client redis.UniversalClient) *ReplayGuard {
	return &ReplayGuard{client: client, prefix: "duogate:code:"}
}

// Claim returns true if key had not been claimed within ttl.
func (g *ReplayGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("replay key cannot be empty")
	}
	if ttl <= 0 {
		return false, errors.New("replay ttl must be positive")
	}
	sum := sha256.Sum256([]byte(key))
	claimed, err := g.client.SetNX(ctx, g.prefix+hex.EncodeToString(sum[:]), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return claimed, nil
}
