// questions/bank.go
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

const (
	roundKeyPrefix = "quiz:round:"
	maxRoundKey    = "quiz:max_round"
)

// Bank serves questions from Redis, keyed by round number. Round 0 is the
// warmup round; each later round carries harder questions worth more points.
type Bank struct {
	rdb *redis.Client
}

// seedFile mirrors questions.json: one list of questions per round, warmup
// first.
type seedFile struct {
	Rounds [][]models.Question `json:"rounds"`
}

func NewBank(rdb *redis.Client) *Bank {
	return &Bank{rdb: rdb}
}

// NewRedisClient connects and pings, failing fast on a bad address.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Load replaces the stored bank with the seed data.
func (b *Bank) Load(ctx context.Context, data []byte) error {
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse question seed: %w", err)
	}
	if len(seed.Rounds) == 0 {
		return fmt.Errorf("question seed contains no rounds")
	}

	for round, qs := range seed.Rounds {
		if len(qs) == 0 {
			return fmt.Errorf("round %d has no questions", round)
		}
		for i := range qs {
			qs[i].Round = round
		}
		encoded, err := json.Marshal(qs)
		if err != nil {
			return fmt.Errorf("failed to encode round %d: %w", round, err)
		}
		if err := b.rdb.Set(ctx, roundKeyPrefix+strconv.Itoa(round), encoded, 0).Err(); err != nil {
			return fmt.Errorf("failed to store round %d: %w", round, err)
		}
	}
	if err := b.rdb.Set(ctx, maxRoundKey, len(seed.Rounds)-1, 0).Err(); err != nil {
		return fmt.Errorf("failed to store max round: %w", err)
	}

	log.Printf("✅ Loaded question bank: %d rounds", len(seed.Rounds))
	return nil
}

// NextQuestion picks a random question for the round. Rounds past the end of
// the bank keep serving the final round's questions.
func (b *Bank) NextQuestion(ctx context.Context, round int) (*models.Question, error) {
	maxRound, err := b.MaxRound(ctx)
	if err != nil {
		return nil, err
	}
	if round > maxRound {
		round = maxRound
	}
	if round < 0 {
		round = 0
	}

	encoded, err := b.rdb.Get(ctx, roundKeyPrefix+strconv.Itoa(round)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch round %d: %w", round, err)
	}

	var qs []models.Question
	if err := json.Unmarshal([]byte(encoded), &qs); err != nil {
		return nil, fmt.Errorf("failed to parse round %d: %w", round, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("round %d has no questions", round)
	}
	q := qs[rand.Intn(len(qs))]
	return &q, nil
}

// MaxRound returns the index of the final round in the bank.
func (b *Bank) MaxRound(ctx context.Context) (int, error) {
	max, err := b.rdb.Get(ctx, maxRoundKey).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch max round: %w", err)
	}
	return max, nil
}
