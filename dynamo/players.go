// dynamo/players.go
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gosimple/slug"

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// scoreIndex is a local secondary index on (game_id, score), so descending
// score queries support consistent reads.
const scoreIndex = "score-index"

// Players wraps the players table, keyed by (game_id, player_id).
type Players struct {
	db    *dynamodb.Client
	table string
}

func NewPlayers(db *dynamodb.Client, table string) *Players {
	if table == "" {
		table = "players"
	}
	return &Players{db: db, table: table}
}

func playerKey(gameID, playerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"game_id":   &types.AttributeValueMemberS{Value: gameID},
		"player_id": &types.AttributeValueMemberS{Value: playerID},
	}
}

// Add creates a player in its initial state and returns the stored record.
// Player ids are a slugged name plus a short random suffix, readable in logs
// and event trails but still opaque to the engine.
func (p *Players) Add(ctx context.Context, gameID, name, api string) (*models.Player, error) {
	player := &models.Player{
		GameID:           gameID,
		PlayerID:         fmt.Sprintf("%s-%s", slug.Make(name), models.NewID()),
		Name:             name,
		API:              api,
		Active:           true,
		NeedsAssistance:  models.AssistanceNone,
		ModificationHash: models.NewModificationHash(),
	}

	item, err := attributevalue.MarshalMap(player)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}
	_, err = p.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add player %s to game %s: %w", player.PlayerID, gameID, err)
	}
	return player, nil
}

// Get returns the player record, or nil if no such player exists.
func (p *Players) Get(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	out, err := p.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(p.table),
		Key:       playerKey(gameID, playerID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s from game %s: %w", playerID, gameID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(out.Item, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player %s: %w", playerID, err)
	}
	return &player, nil
}

// Query returns the game's players matching every equality filter, in key
// order. Pass nil filters for all players.
func (p *Players) Query(ctx context.Context, gameID string, filters map[string]any) ([]models.Player, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("game_id").Equal(expression.Value(gameID)))

	if len(filters) > 0 {
		filter := expression.AttributeExists(expression.Name("player_id"))
		for name, value := range filters {
			filter = filter.And(expression.Equal(expression.Name(name), expression.Value(value)))
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build player query: %w", err)
	}
	return p.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(p.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// QueryByScore returns the game's players ordered by score, highest first,
// via a consistent read of the score index. Leaderboard positions derive from
// the order of this result.
func (p *Players) QueryByScore(ctx context.Context, gameID string, activeOnly bool) ([]models.Player, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("game_id").Equal(expression.Value(gameID)))
	if activeOnly {
		builder = builder.WithFilter(expression.Equal(expression.Name("active"), expression.Value(true)))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build score query: %w", err)
	}
	return p.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(p.table),
		IndexName:                 aws.String(scoreIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		ConsistentRead:            aws.Bool(true),
	})
}

func (p *Players) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]models.Player, error) {
	var players []models.Player
	for {
		out, err := p.db.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query players: %w", err)
		}

		var page []models.Player
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal players: %w", err)
		}
		players = append(players, page...)

		if out.LastEvaluatedKey == nil {
			return players, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// ValidateModificationHash atomically checks the stored token against prev and
// rotates it. Returns the new token, or models.ErrStaleModificationHash when
// the task carrying prev has been superseded.
func (p *Players) ValidateModificationHash(ctx context.Context, gameID, playerID, prev string) (string, error) {
	next := models.NewModificationHash()
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("modification_hash"), expression.Value(next))).
		WithCondition(expression.Equal(expression.Name("modification_hash"), expression.Value(prev))).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build hash expression: %w", err)
	}

	_, err = p.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(p.table),
		Key:                       playerKey(gameID, playerID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var check *types.ConditionalCheckFailedException
		if errors.As(err, &check) {
			return "", models.ErrStaleModificationHash
		}
		return "", fmt.Errorf("failed to validate hash for player %s: %w", playerID, err)
	}
	return next, nil
}

// Update sets attributes and bumps counters in one write. Counter bumps use
// ADD so concurrent tasks never lose increments.
func (p *Players) Update(ctx context.Context, gameID, playerID string, set map[string]any, increment ...string) error {
	var update expression.UpdateBuilder
	for name, value := range set {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	for _, name := range increment {
		update = update.Add(expression.Name(name), expression.Value(1))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = p.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(p.table),
		Key:                       playerKey(gameID, playerID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to update player %s in game %s: %w", playerID, gameID, err)
	}
	return nil
}

// IncrementScore adds delta to the player's score atomically. Delta may be
// negative; scores may go below zero.
func (p *Players) IncrementScore(ctx context.Context, gameID, playerID string, delta int) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name("score"), expression.Value(delta))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build score expression: %w", err)
	}

	_, err = p.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(p.table),
		Key:                       playerKey(gameID, playerID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to increment score for player %s: %w", playerID, err)
	}
	return nil
}
