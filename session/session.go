package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"token-sentry/config"
)

// Pending-input kinds. A user has at most one pending input at a time;
// sending anything else simply replaces or clears it.
const (
	AwaitTokenAddress  = "await_token_address"
	AwaitWalletAddress = "await_wallet_address"
	AwaitTxHash        = "await_tx_hash"
)

// Pending is the tagged "expecting next message" state for one user.
type Pending struct {
	Kind    string `json:"kind"`
	Command string `json:"command,omitempty"`
	Chain   string `json:"chain,omitempty"`
	Days    int    `json:"days,omitempty"`
}

const pendingTTL = 10 * time.Minute

// Store keeps per-user pending input in redis with a TTL, so stale prompts
// expire on their own and state survives bot restarts.
type Store struct {
	rdb    *redis.Client
	logger *zap.SugaredLogger
}

func New(cfg *config.RedisConfig) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(rdb), nil
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{
		rdb:    rdb,
		logger: zap.S().Named("[session]"),
	}
}

func key(telegramID int64) string {
	return fmt.Sprintf("pending:%d", telegramID)
}

func (s *Store) Set(ctx context.Context, telegramID int64, pending *Pending) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(telegramID), data, pendingTTL).Err()
}

// Get returns the user's pending input, or nil when there is none.
func (s *Store) Get(ctx context.Context, telegramID int64) (*Pending, error) {
	data, err := s.rdb.Get(ctx, key(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Warnf("Get pending for [%d] error: %s", telegramID, err.Error())
		return nil, err
	}

	var pending Pending
	if err = json.Unmarshal(data, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (s *Store) Clear(ctx context.Context, telegramID int64) {
	if err := s.rdb.Del(ctx, key(telegramID)).Err(); err != nil {
		s.logger.Warnf("Clear pending for [%d] error: %s", telegramID, err.Error())
	}
}
