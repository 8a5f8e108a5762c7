package mongodb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// ChangeFeed usa change streams do MongoDB (exige replica set).
type ChangeFeed struct {
	collection *mongo.Collection
}

func NewChangeFeed(client *mongo.Client, dbName string) *ChangeFeed {
	return &ChangeFeed{collection: client.Database(dbName).Collection(transactionsCollection)}
}

func (f *ChangeFeed) Watch(ctx context.Context, accountID string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: "insert"},
			{Key: "fullDocument.account_id", Value: accountID},
		}}},
	}
	stream, err := f.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("Falha ao fechar change stream")
			}
		}()
		for stream.Next(ctx) {
			select {
			case signals <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("account_id", accountID).Msg("Change stream interrompido")
		}
	}()
	return signals, nil
}

var _ gateway.ChangeFeed = (*ChangeFeed)(nil)
