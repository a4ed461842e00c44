package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"wagering/events"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RecentPlayersLimit is how many distinct players are remembered
const RecentPlayersLimit = 10

const recentPlayersKey = "wagering:recent_players"

// RecentPlayers remembers the latest distinct users who placed a wager
type RecentPlayers interface {
	Touch(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]int64, error)
}

// touchRecentScript moves a player to the head of the list and keeps it bounded
var touchRecentScript = redis.NewScript(`
	local key = KEYS[1]
	local member = ARGV[1]
	local limit = tonumber(ARGV[2])

	redis.call("LREM", key, 0, member)
	redis.call("LPUSH", key, member)
	redis.call("LTRIM", key, 0, limit - 1)

	return redis.call("LLEN", key)
`)

// RedisRecentPlayers keeps the recent players list in Redis
type RedisRecentPlayers struct {
	client *redis.Client
	key    string
	limit  int
}

// NewRedisRecentPlayers connects to Redis and verifies the connection
func NewRedisRecentPlayers(ctx context.Context, addr, password string, db int) (*RedisRecentPlayers, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRecentPlayers{
		client: client,
		key:    recentPlayersKey,
		limit:  RecentPlayersLimit,
	}, nil
}

func (r *RedisRecentPlayers) Touch(ctx context.Context, userID int64) error {
	member := strconv.FormatInt(userID, 10)
	if err := touchRecentScript.Run(ctx, r.client, []string{r.key}, member, r.limit).Err(); err != nil {
		return fmt.Errorf("failed to record recent player: %w", err)
	}
	return nil
}

func (r *RedisRecentPlayers) List(ctx context.Context) ([]int64, error) {
	members, err := r.client.LRange(ctx, r.key, 0, int64(r.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent players: %w", err)
	}

	players := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			log.WithField("member", member).Warn("Skipping malformed recent player entry")
			continue
		}
		players = append(players, id)
	}
	return players, nil
}

// Clear removes the list
func (r *RedisRecentPlayers) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisRecentPlayers) Close() error {
	return r.client.Close()
}

// MemoryRecentPlayers keeps the recent players list in process
type MemoryRecentPlayers struct {
	mu      sync.Mutex
	players []int64
	limit   int
}

func NewMemoryRecentPlayers() *MemoryRecentPlayers {
	return &MemoryRecentPlayers{limit: RecentPlayersLimit}
}

func (m *MemoryRecentPlayers) Touch(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]int64, 0, m.limit)
	next = append(next, userID)
	for _, id := range m.players {
		if id != userID && len(next) < m.limit {
			next = append(next, id)
		}
	}
	m.players = next
	return nil
}

func (m *MemoryRecentPlayers) List(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.players...), nil
}

// RegisterRecentPlayers records every user whose stake was debited
func RegisterRecentPlayers(bus *events.Bus, recent RecentPlayers) {
	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, event events.Event) {
		placed, ok := event.(events.WagerPlacedEvent)
		if !ok {
			return
		}
		if err := recent.Touch(ctx, placed.UserID); err != nil {
			log.WithFields(log.Fields{
				"userID": placed.UserID,
				"error":  err,
			}).Warn("Failed to update recent players")
		}
	})
}
