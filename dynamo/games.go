// dynamo/games.go
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

	"github.com/JonathanFoo0523/extreme-startup-scaled/models"
)

// Games wraps the games table: one record per contest, keyed by game_id.
type Games struct {
	db    *dynamodb.Client
	table string
}

func NewGames(db *dynamodb.Client, table string) *Games {
	if table == "" {
		table = "games"
	}
	return &Games{db: db, table: table}
}

func gameKey(gameID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"game_id": &types.AttributeValueMemberS{Value: gameID},
	}
}

// Add creates a new game in its initial state: warmup round, running, manual
// round advancement.
func (g *Games) Add(ctx context.Context, password string) (*models.Game, error) {
	game := &models.Game{
		GameID:           models.NewID(),
		Password:         password,
		Round:            0,
		Running:          true,
		Ended:            false,
		AutoMode:         false,
		ModificationHash: models.NewModificationHash(),
	}

	item, err := attributevalue.MarshalMap(game)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game: %w", err)
	}
	_, err = g.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add game %s: %w", game.GameID, err)
	}
	return game, nil
}

// Get returns the game record, or nil if no such game exists.
func (g *Games) Get(ctx context.Context, gameID string) (*models.Game, error) {
	out, err := g.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.table),
		Key:       gameKey(gameID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var game models.Game
	if err := attributevalue.UnmarshalMap(out.Item, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", gameID, err)
	}
	return &game, nil
}

// ScanGames returns every game matching the ended flag. Paginates the full
// table; the games table stays small.
func (g *Games) ScanGames(ctx context.Context, ended bool) ([]models.Game, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Equal(expression.Name("ended"), expression.Value(ended))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var games []models.Game
	var startKey map[string]types.AttributeValue
	for {
		out, err := g.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(g.table),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan games: %w", err)
		}

		var page []models.Game
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal games: %w", err)
		}
		games = append(games, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return games, nil
}

// ValidateModificationHash atomically checks the stored token against prev and
// rotates it. Returns the new token, or models.ErrStaleModificationHash if a
// newer administrative mutation has already rotated it.
func (g *Games) ValidateModificationHash(ctx context.Context, gameID, prev string) (string, error) {
	next := models.NewModificationHash()
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("modification_hash"), expression.Value(next))).
		WithCondition(expression.Equal(expression.Name("modification_hash"), expression.Value(prev))).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build hash expression: %w", err)
	}

	_, err = g.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table),
		Key:                       gameKey(gameID),
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
		return "", fmt.Errorf("failed to validate hash for game %s: %w", gameID, err)
	}
	return next, nil
}

// UpdateAttributes sets arbitrary attributes unconditionally. Administrative
// mutations that must fence in-flight tasks also rotate the token here.
func (g *Games) UpdateAttributes(ctx context.Context, gameID string, attrs map[string]any) error {
	var update expression.UpdateBuilder
	for name, value := range attrs {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = g.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table),
		Key:                       gameKey(gameID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", gameID, err)
	}
	return nil
}

// IncrementRound advances the round counter atomically and returns the new
// round number. Concurrent monitors and admins never read-modify-write.
func (g *Games) IncrementRound(ctx context.Context, gameID string) (int, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name("round"), expression.Value(1))).
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build round expression: %w", err)
	}

	out, err := g.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table),
		Key:                       gameKey(gameID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment round for game %s: %w", gameID, err)
	}

	var round int
	if err := attributevalue.Unmarshal(out.Attributes["round"], &round); err != nil {
		return 0, fmt.Errorf("failed to read new round for game %s: %w", gameID, err)
	}
	return round, nil
}

// SetStats stamps the final statistics block onto an ended game.
func (g *Games) SetStats(ctx context.Context, gameID string, stats *models.GameStats) error {
	return g.UpdateAttributes(ctx, gameID, map[string]any{"stats": stats})
}
