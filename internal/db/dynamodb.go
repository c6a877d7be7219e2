package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

const SINK_DYNAMODB = "dynamodb"

type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// recordItem is the table layout. partitionKey is the source object key.
type recordItem struct {
	PartitionKey string             `dynamodbav:"partitionKey"`
	Transcript   string             `dynamodbav:"transcript"`
	Created      int64              `dynamodbav:"created"`
	Sentiment    string             `dynamodbav:"Sentiment"`
	KeyPhrases   []models.KeyPhrase `dynamodbav:"KeyPhrases"`
	Entities     []models.Entity    `dynamodbav:"Entities"`
	Positive     float64            `dynamodbav:"Positive"`
	Negative     float64            `dynamodbav:"Negative"`
	Neutral      float64            `dynamodbav:"Neutral"`
	Mixed        float64            `dynamodbav:"Mixed"`
}

type RecordStore struct {
	client    DynamoDBAPI
	tableName string
}

func NewRecordStore(client DynamoDBAPI, tableName string) *RecordStore {
	return &RecordStore{client: client, tableName: tableName}
}

func RecordToDynamoDBItem(record models.EnrichedRecord) (map[string]types.AttributeValue, error) {
	item := recordItem{
		PartitionKey: record.ID,
		Transcript:   record.Transcript,
		Created:      record.Created,
		Sentiment:    record.Sentiment,
		KeyPhrases:   record.KeyPhrases,
		Entities:     record.Entities,
		Positive:     record.Positive,
		Negative:     record.Negative,
		Neutral:      record.Neutral,
		Mixed:        record.Mixed,
	}
	if item.KeyPhrases == nil {
		item.KeyPhrases = []models.KeyPhrase{}
	}
	if item.Entities == nil {
		item.Entities = []models.Entity{}
	}

	return attributevalue.MarshalMap(item)
}

// PutRecord upserts the record keyed by its ID. Writing the same ID twice
// replaces the earlier item.
func (s *RecordStore) PutRecord(ctx context.Context, record models.EnrichedRecord) error {
	item, err := RecordToDynamoDBItem(record)
	if err != nil {
		slog.Error("[DynamoDB] Unable to marshal record",
			slog.String("object_key", record.ID),
			slog.String("error", err.Error()))
		return &common.StoreWriteError{Sink: SINK_DYNAMODB, Err: fmt.Errorf("marshal item: %w", err)}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		slog.Error("[DynamoDB] Failed to put record",
			slog.String("object_key", record.ID),
			slog.String("table", s.tableName),
			slog.String("error", err.Error()))
		return &common.StoreWriteError{Sink: SINK_DYNAMODB, Err: err}
	}

	slog.Info("[DynamoDB] Successfully stored record",
		slog.String("object_key", record.ID),
		slog.String("table", s.tableName))
	return nil
}

func (s *RecordStore) IsHealthy(ctx context.Context) bool {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		slog.Warn("[DynamoDB] Health check failed",
			slog.String("table", s.tableName),
			slog.String("error", err.Error()))
		return false
	}
	if out.Table == nil {
		return false
	}

	return out.Table.TableStatus == types.TableStatusActive
}
