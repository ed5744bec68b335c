package repository

import (
	"context"
	"fmt"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const defaultUsersTableName = "users"

type purchaseRecordItem struct {
	ItemID      string      `dynamodbav:"item_id"`
	Amount      decimalAttr `dynamodbav:"amount"`
	Method      string      `dynamodbav:"method"`
	PurchasedAt string      `dynamodbav:"purchased_at"`
	PaymentID   string      `dynamodbav:"payment_id,omitempty"`
}

type userItem struct {
	ID              string               `dynamodbav:"id"`
	Name            string               `dynamodbav:"name"`
	Email           string               `dynamodbav:"email"`
	Document        string               `dynamodbav:"document,omitempty"`
	Role            string               `dynamodbav:"role"`
	OwnedItemIDs    []string             `dynamodbav:"owned_item_ids,stringset,omitempty"`
	PurchaseHistory []purchaseRecordItem `dynamodbav:"purchase_history,omitempty"`
}

// UserDynamoRepository reads users and applies entitlement grants.
//
// Table requirements:
//   - PK: id (string)
//
// owned_item_ids is a string set; purchase_history is a list appended in the
// same update, so a grant is never half applied.
type UserDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IUserRepository = (*UserDynamoRepository)(nil)

func NewUserDynamoRepository(ddb *dynamodb.Client) *UserDynamoRepository {
	return &UserDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("USERS_TABLE", defaultUsersTableName),
	}
}

func (r *UserDynamoRepository) GetByID(ctx context.Context, id string) (entities.User, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.User{}, err
	}
	if len(out.Item) == 0 {
		return entities.User{}, nil
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.User{}, err
	}
	return fromUserItem(it), nil
}

func (r *UserDynamoRepository) Grant(ctx context.Context, userID string, record entities.PurchaseRecord) (bool, error) {
	upd, err := grantUpdate(r.tableName, userID, record)
	if err != nil {
		return false, err
	}
	_, err = r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 upd.TableName,
		Key:                       upd.Key,
		UpdateExpression:          upd.UpdateExpression,
		ConditionExpression:       upd.ConditionExpression,
		ExpressionAttributeNames:  upd.ExpressionAttributeNames,
		ExpressionAttributeValues: upd.ExpressionAttributeValues,
	})
	if err == nil {
		return true, nil
	}
	if !isConditionalCheckFailed(err) {
		return false, err
	}

	// Either the user is gone or the item was already owned.
	u, gerr := r.GetByID(ctx, userID)
	if gerr != nil {
		return false, gerr
	}
	if u.ID == "" {
		return false, interfaces.ErrRecordNotFound
	}
	return false, nil
}

// grantUpdate adds the item to the owned set and appends the purchase record,
// guarded so that an owned item is never granted twice.
func grantUpdate(tableName, userID string, record entities.PurchaseRecord) (*types.Update, error) {
	rec, err := attributevalue.Marshal([]purchaseRecordItem{toPurchaseRecordItem(record)})
	if err != nil {
		return nil, fmt.Errorf("marshal purchase record: %w", err)
	}
	return &types.Update{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("ADD #owned :itemset SET #history = list_append(if_not_exists(#history, :empty), :rec)"),
		ConditionExpression: aws.String("attribute_exists(#id) AND NOT contains(#owned, :item)"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#owned":   "owned_item_ids",
			"#history": "purchase_history",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":itemset": &types.AttributeValueMemberSS{Value: []string{record.ItemID}},
			":item":    &types.AttributeValueMemberS{Value: record.ItemID},
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":rec":     rec,
		},
	}, nil
}

func toPurchaseRecordItem(r entities.PurchaseRecord) purchaseRecordItem {
	return purchaseRecordItem{
		ItemID:      r.ItemID,
		Amount:      decimalAttr(r.Amount),
		Method:      string(r.Method),
		PurchasedAt: formatTime(r.PurchasedAt),
		PaymentID:   r.PaymentID,
	}
}

func fromUserItem(it userItem) entities.User {
	history := make([]entities.PurchaseRecord, 0, len(it.PurchaseHistory))
	for _, h := range it.PurchaseHistory {
		history = append(history, entities.PurchaseRecord{
			ItemID:      h.ItemID,
			Amount:      decimal.Decimal(h.Amount),
			Method:      entities.PaymentMethod(h.Method),
			PurchasedAt: parseTime(h.PurchasedAt),
			PaymentID:   h.PaymentID,
		})
	}
	return entities.User{
		ID:              it.ID,
		Name:            it.Name,
		Email:           it.Email,
		Document:        it.Document,
		Role:            it.Role,
		OwnedItemIDs:    it.OwnedItemIDs,
		PurchaseHistory: history,
	}
}
