package repository

import (
	"context"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const defaultItemsTableName = "items"

type catalogItem struct {
	ID       string      `dynamodbav:"id"`
	Title    string      `dynamodbav:"title"`
	Price    decimalAttr `dynamodbav:"price"`
	IsActive *bool       `dynamodbav:"is_active"`
}

// ItemDynamoRepository is a read-only view of the catalog table.
//
// Table requirements:
//   - PK: id (string)
type ItemDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IItemRepository = (*ItemDynamoRepository)(nil)

func NewItemDynamoRepository(ddb *dynamodb.Client) *ItemDynamoRepository {
	return &ItemDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ITEMS_TABLE", defaultItemsTableName),
	}
}

func (r *ItemDynamoRepository) GetByID(ctx context.Context, id string) (entities.Item, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return entities.Item{}, err
	}
	if len(out.Item) == 0 {
		return entities.Item{}, nil
	}

	var it catalogItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Item{}, err
	}
	return fromCatalogItem(it), nil
}

// fromCatalogItem treats a missing is_active flag as active.
func fromCatalogItem(it catalogItem) entities.Item {
	active := true
	if it.IsActive != nil {
		active = *it.IsActive
	}
	return entities.Item{
		ID:     it.ID,
		Title:  it.Title,
		Price:  decimal.Decimal(it.Price),
		Active: active,
	}
}
