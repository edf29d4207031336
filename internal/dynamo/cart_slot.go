package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/quickprintz/storefront/internal/cart"
)

// ErrTableMissing 表不存在
var ErrTableMissing = errors.New("dynamodb cart table not found")

type cartRecord struct {
	CartKey     string `dynamodbav:"cart_key"`
	Payload     string `dynamodbav:"payload"`
	UpdatedAtMs int64  `dynamodbav:"updated_at_ms"`
}

// CartSlot 以 DynamoDB 单条记录保存购物车快照
// 写入带快照产生时间的条件，较旧的快照不会覆盖较新的
type CartSlot struct {
	client  API
	table   string
	key     string
	nowFunc func() time.Time
}

// NewCartSlot 创建购物车槽
func NewCartSlot(client API, table, key string) *CartSlot {
	return &CartSlot{client: client, table: table, key: key, nowFunc: time.Now}
}

// SlotFactory 返回按 key 创建槽的工厂
func SlotFactory(client API, table string) cart.SlotFactory {
	return func(key string) cart.Slot {
		return NewCartSlot(client, table, key)
	}
}

func (s *CartSlot) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      sdkaws.String(s.table),
		Key:            map[string]types.AttributeValue{"cart_key": &types.AttributeValueMemberS{Value: s.key}},
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, classify("get item", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	var rec cartRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal cart record: %w", err)
	}
	return []byte(rec.Payload), nil
}

// Write 以当前时间作为快照时间写入
func (s *CartSlot) Write(ctx context.Context, data []byte) error {
	return s.WriteAt(ctx, data, s.nowFunc())
}

// WriteAt 以快照产生的时间写入，库中已有更新的快照时静默跳过
func (s *CartSlot) WriteAt(ctx context.Context, data []byte, at time.Time) error {
	rec := cartRecord{
		CartKey:     s.key,
		Payload:     string(data),
		UpdatedAtMs: at.UnixMilli(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal cart record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           sdkaws.String(s.table),
		Item:                item,
		ConditionExpression: sdkaws.String("attribute_not_exists(cart_key) OR updated_at_ms <= :ts"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ts": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.UpdatedAtMs, 10)},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return nil
		}
		return classify("put item", err)
	}
	return nil
}

func classify(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
		return fmt.Errorf("%s: %w", op, ErrTableMissing)
	}
	return fmt.Errorf("%s: %w", op, err)
}
