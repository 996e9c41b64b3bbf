package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStorage persists client state in a DynamoDB table keyed by state_key.
type DynamoStorage struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoState represents the DynamoDB item structure
type dynamoState struct {
	StateKey  string `dynamodbav:"state_key"`
	Value     []byte `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoStorage(client *dynamodb.Client, tableName string) *DynamoStorage {
	return &DynamoStorage{client: client, tableName: tableName}
}

func (s *DynamoStorage) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"state_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get state item: %w", err)
	}
	if result.Item == nil {
		return nil, ErrKeyNotFound
	}

	var item dynamoState
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state item: %w", err)
	}
	return item.Value, nil
}

func (s *DynamoStorage) Set(ctx context.Context, key string, value []byte) error {
	item := dynamoState{
		StateKey:  key,
		Value:     value,
		UpdatedAt: time.Now().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal state item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put state item: %w", err)
	}
	return nil
}

func (s *DynamoStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"state_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete state item: %w", err)
	}
	return nil
}

func (s *DynamoStorage) Close() error {
	return nil
}
