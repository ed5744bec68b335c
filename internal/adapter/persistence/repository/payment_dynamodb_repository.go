package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	defaultPaymentsTableName     = "payments"
	defaultPaymentLocksTableName = "payment_locks"
	paymentsProviderRefIndex     = "provider_ref-index"

	codeConditionalCheckFailed = "ConditionalCheckFailed"
)

type paymentItem struct {
	ID               string      `dynamodbav:"id"`
	CorrelationID    string      `dynamodbav:"correlation_id"`
	ProviderRef      string      `dynamodbav:"provider_ref,omitempty"`
	UserID           string      `dynamodbav:"user_id,omitempty"`
	ItemID           string      `dynamodbav:"item_id,omitempty"`
	Amount           decimalAttr `dynamodbav:"amount"`
	Description      string      `dynamodbav:"description,omitempty"`
	Status           string      `dynamodbav:"status"`
	Method           string      `dynamodbav:"method"`
	Provider         string      `dynamodbav:"provider"`
	PixCode          string      `dynamodbav:"pix_code,omitempty"`
	QRCodeURL        string      `dynamodbav:"qr_code_url,omitempty"`
	ExpiresAt        string      `dynamodbav:"expires_at"`
	CustomerName     string      `dynamodbav:"customer_name,omitempty"`
	CustomerEmail    string      `dynamodbav:"customer_email,omitempty"`
	CustomerDocument string      `dynamodbav:"customer_document,omitempty"`
	CreatedAt        string      `dynamodbav:"created_at"`
	UpdatedAt        string      `dynamodbav:"updated_at"`
	PaidAt           string      `dynamodbav:"paid_at,omitempty"`
}

type pendingLockItem struct {
	LockKey       string `dynamodbav:"lock_key"`
	UserID        string `dynamodbav:"user_id"`
	ItemID        string `dynamodbav:"item_id"`
	PaymentID     string `dynamodbav:"payment_id"`
	ExpiresAt     string `dynamodbav:"expires_at"`
	ExpiresAtUnix int64  `dynamodbav:"expires_at_unix"`
}

// PaymentDynamoRepository persists payments and the pending locks that keep at
// most one live pending payment per (user, item).
//
// Table requirements:
//   - payments: PK id (string); GSI provider_ref-index (PK: provider_ref)
//   - payment_locks: PK lock_key (string, "userId#itemId"); expires_at_unix
//     may be enabled as the table TTL attribute
type PaymentDynamoRepository struct {
	ddb        *dynamodb.Client
	tableName  string
	locksTable string
	usersTable string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:        ddb,
		tableName:  getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
		locksTable: getenvDefault("PAYMENT_LOCKS_TABLE", defaultPaymentLocksTableName),
		usersTable: getenvDefault("USERS_TABLE", defaultUsersTableName),
	}
}

func (r *PaymentDynamoRepository) CreatePending(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	put, err := r.putPayment(p)
	if err != nil {
		return entities.Payment{}, err
	}
	if !p.GrantsEntitlement() {
		_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                put.TableName,
			Item:                     put.Item,
			ConditionExpression:      put.ConditionExpression,
			ExpressionAttributeNames: put.ExpressionAttributeNames,
		})
		if err != nil {
			return entities.Payment{}, err
		}
		return p, nil
	}

	lock, err := r.acquireLock(p)
	if err != nil {
		return entities.Payment{}, err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{{Put: put}, {Put: lock}},
	})
	if err != nil {
		return entities.Payment{}, createPendingError(err)
	}
	return p, nil
}

// createPendingError classifies a cancelled payment + lock transaction. A
// failed condition on the lock means a live pending payment holds it; any
// other cancellation (a TransactionConflict with a concurrent create or
// release) is a race the caller may retry.
func createPendingError(err error) error {
	codes := cancellationCodes(err)
	switch {
	case codes == nil:
		return err
	case codeAt(codes, 1) == codeConditionalCheckFailed:
		return interfaces.ErrPendingPaymentExists
	default:
		return fmt.Errorf("%w: %v", interfaces.ErrConcurrentUpdate, err)
	}
}

func (r *PaymentDynamoRepository) CreateApproved(ctx context.Context, p entities.Payment, grant *entities.PurchaseRecord) (entities.Payment, error) {
	put, err := r.putPayment(p)
	if err != nil {
		return entities.Payment{}, err
	}
	items := []types.TransactWriteItem{{Put: put}}
	if grant != nil {
		upd, err := grantUpdate(r.usersTable, p.UserID, *grant)
		if err != nil {
			return entities.Payment{}, err
		}
		items = append(items, types.TransactWriteItem{Update: upd})
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if cancellationCodes(err) != nil {
			return entities.Payment{}, fmt.Errorf("%w: %v", interfaces.ErrConcurrentUpdate, err)
		}
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}
	return unmarshalPayment(out.Item)
}

func (r *PaymentDynamoRepository) GetByProviderRef(ctx context.Context, providerRef string) (entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsProviderRefIndex),
		KeyConditionExpression: aws.String("provider_ref = :ref"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: providerRef},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Items) == 0 {
		return entities.Payment{}, nil
	}
	// The index may lag; read the row itself for the current status.
	p, err := unmarshalPayment(out.Items[0])
	if err != nil {
		return entities.Payment{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PaymentDynamoRepository) GetPendingLock(ctx context.Context, userID, itemID string) (entities.PendingLock, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.locksTable),
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: entities.PendingLockKey(userID, itemID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PendingLock{}, err
	}
	if len(out.Item) == 0 {
		return entities.PendingLock{}, nil
	}
	var it pendingLockItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PendingLock{}, err
	}
	return entities.PendingLock{
		UserID:    it.UserID,
		ItemID:    it.ItemID,
		PaymentID: it.PaymentID,
		ExpiresAt: parseTime(it.ExpiresAt),
	}, nil
}

func (r *PaymentDynamoRepository) AttachPix(ctx context.Context, id string, pix entities.PixCharge) (entities.Payment, error) {
	in := attachPixInput(r.tableName, id, pix, time.Now().UTC())
	out, err := r.ddb.UpdateItem(ctx, in)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.Payment{}, fmt.Errorf("%w: payment %s is no longer pending", interfaces.ErrConcurrentUpdate, id)
		}
		return entities.Payment{}, err
	}
	p, err := unmarshalPayment(out.Attributes)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.GrantsEntitlement() {
		r.refreshLock(ctx, p)
	}
	return p, nil
}

// refreshLock moves the lock expiry to the PIX expiry. Best effort: the lock
// is also guarded by the payment row itself.
func (r *PaymentDynamoRepository) refreshLock(ctx context.Context, p entities.Payment) {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.locksTable),
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: entities.PendingLockKey(p.UserID, p.ItemID)},
		},
		UpdateExpression:    aws.String("SET #exp = :exp, #expu = :expu"),
		ConditionExpression: aws.String("#pid = :pid"),
		ExpressionAttributeNames: map[string]string{
			"#exp":  "expires_at",
			"#expu": "expires_at_unix",
			"#pid":  "payment_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":exp":  &types.AttributeValueMemberS{Value: formatTime(p.ExpiresAt)},
			":expu": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", p.ExpiresAt.Unix())},
			":pid":  &types.AttributeValueMemberS{Value: p.ID},
		},
	})
	if err != nil && !isConditionalCheckFailed(err) {
		log.Printf("[payment][repository] lock refresh failed id=%s err=%v", p.ID, err)
	}
}

func (r *PaymentDynamoRepository) Approve(ctx context.Context, id string, paidAt time.Time, grant *entities.PurchaseRecord) (entities.Payment, error) {
	upd := statusUpdate(r.tableName, id, entities.PaymentStatusApproved, paidAt, &paidAt)
	if grant == nil {
		out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 upd.TableName,
			Key:                       upd.Key,
			UpdateExpression:          upd.UpdateExpression,
			ConditionExpression:       upd.ConditionExpression,
			ExpressionAttributeNames:  upd.ExpressionAttributeNames,
			ExpressionAttributeValues: upd.ExpressionAttributeValues,
			ReturnValues:              types.ReturnValueAllNew,
		})
		if err != nil {
			if isConditionalCheckFailed(err) {
				return entities.Payment{}, fmt.Errorf("%w: payment %s is no longer pending", interfaces.ErrConcurrentUpdate, id)
			}
			return entities.Payment{}, err
		}
		return unmarshalPayment(out.Attributes)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if current.ID == "" {
		return entities.Payment{}, interfaces.ErrRecordNotFound
	}
	userUpd, err := grantUpdate(r.usersTable, current.UserID, *grant)
	if err != nil {
		return entities.Payment{}, err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{{Update: upd}, {Update: userUpd}},
	})
	if err != nil {
		if codes := cancellationCodes(err); codes != nil {
			return entities.Payment{}, fmt.Errorf("%w: approve cancelled reasons=%v", interfaces.ErrConcurrentUpdate, codes)
		}
		return entities.Payment{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PaymentDynamoRepository) Transition(ctx context.Context, id string, status entities.PaymentStatus, at time.Time) (entities.Payment, error) {
	if _, err := entities.ParsePaymentStatus(string(status)); err != nil {
		return entities.Payment{}, err
	}
	upd := statusUpdate(r.tableName, id, status, at, nil)
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 upd.TableName,
		Key:                       upd.Key,
		UpdateExpression:          upd.UpdateExpression,
		ConditionExpression:       upd.ConditionExpression,
		ExpressionAttributeNames:  upd.ExpressionAttributeNames,
		ExpressionAttributeValues: upd.ExpressionAttributeValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.Payment{}, fmt.Errorf("%w: payment %s is no longer pending", interfaces.ErrConcurrentUpdate, id)
		}
		return entities.Payment{}, err
	}
	return unmarshalPayment(out.Attributes)
}

func (r *PaymentDynamoRepository) ReleasePendingLock(ctx context.Context, p entities.Payment) error {
	if !p.GrantsEntitlement() {
		return nil
	}
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.locksTable),
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: entities.PendingLockKey(p.UserID, p.ItemID)},
		},
		ConditionExpression: aws.String("#pid = :pid"),
		ExpressionAttributeNames: map[string]string{
			"#pid": "payment_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: p.ID},
		},
	})
	if err != nil && !isConditionalCheckFailed(err) {
		return err
	}
	return nil
}

func (r *PaymentDynamoRepository) putPayment(p entities.Payment) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return nil, err
	}
	return &types.Put{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	}, nil
}

// acquireLock claims the (user, item) slot unless a lock that has not expired
// yet holds it.
func (r *PaymentDynamoRepository) acquireLock(p entities.Payment) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(pendingLockItem{
		LockKey:       entities.PendingLockKey(p.UserID, p.ItemID),
		UserID:        p.UserID,
		ItemID:        p.ItemID,
		PaymentID:     p.ID,
		ExpiresAt:     formatTime(p.ExpiresAt),
		ExpiresAtUnix: p.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}
	return &types.Put{
		TableName:           aws.String(r.locksTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#lk) OR #expu < :now"),
		ExpressionAttributeNames: map[string]string{
			"#lk":   "lock_key",
			"#expu": "expires_at_unix",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", p.CreatedAt.Unix())},
		},
	}, nil
}

// statusUpdate moves a pending payment to status. paidAt is only set on approval.
func statusUpdate(tableName, id string, status entities.PaymentStatus, at time.Time, paidAt *time.Time) *types.Update {
	expr := "SET #status = :status, #updated = :updated"
	names := map[string]string{
		"#status":  "status",
		"#updated": "updated_at",
	}
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: string(status)},
		":updated": &types.AttributeValueMemberS{Value: formatTime(at)},
		":pending": &types.AttributeValueMemberS{Value: string(entities.PaymentStatusPending)},
	}
	if paidAt != nil {
		expr += ", #paid = :paid"
		names["#paid"] = "paid_at"
		values[":paid"] = &types.AttributeValueMemberS{Value: formatTime(*paidAt)}
	}
	return &types.Update{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id) AND #status = :pending"),
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ExpressionAttributeValues: values,
	}
}

func attachPixInput(tableName, id string, pix entities.PixCharge, now time.Time) *dynamodb.UpdateItemInput {
	expr := "SET #pix = :pix, #qr = :qr, #provider = :provider, #exp = :exp, #updated = :updated"
	names := map[string]string{
		"#pix":      "pix_code",
		"#qr":       "qr_code_url",
		"#provider": "provider",
		"#exp":      "expires_at",
		"#updated":  "updated_at",
		"#status":   "status",
		"#id":       "id",
	}
	values := map[string]types.AttributeValue{
		":pix":      &types.AttributeValueMemberS{Value: pix.PixCode},
		":qr":       &types.AttributeValueMemberS{Value: pix.QRCodeURL},
		":provider": &types.AttributeValueMemberS{Value: pix.Provider},
		":exp":      &types.AttributeValueMemberS{Value: formatTime(pix.ExpiresAt)},
		":updated":  &types.AttributeValueMemberS{Value: formatTime(now)},
		":pending":  &types.AttributeValueMemberS{Value: string(entities.PaymentStatusPending)},
	}
	// provider_ref is an index key and cannot be an empty string.
	if pix.ProviderRef != "" {
		expr += ", #ref = :ref"
		names["#ref"] = "provider_ref"
		values[":ref"] = &types.AttributeValueMemberS{Value: pix.ProviderRef}
	}
	return &dynamodb.UpdateItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id) AND #status = :pending"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
}

func unmarshalPayment(av map[string]types.AttributeValue) (entities.Payment, error) {
	var it paymentItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it)
}

func toPaymentItem(p entities.Payment) paymentItem {
	it := paymentItem{
		ID:               p.ID,
		CorrelationID:    p.CorrelationID,
		ProviderRef:      p.ProviderRef,
		UserID:           p.UserID,
		ItemID:           p.ItemID,
		Amount:           decimalAttr(p.Amount),
		Description:      p.Description,
		Status:           string(p.Status),
		Method:           string(p.Method),
		Provider:         p.Provider,
		PixCode:          p.PixCode,
		QRCodeURL:        p.QRCodeURL,
		ExpiresAt:        formatTime(p.ExpiresAt),
		CustomerName:     p.Customer.Name,
		CustomerEmail:    p.Customer.Email,
		CustomerDocument: p.Customer.Document,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
	if p.PaidAt != nil {
		it.PaidAt = formatTime(*p.PaidAt)
	}
	return it
}

// fromPaymentItem rejects rows whose status is outside the known set.
func fromPaymentItem(it paymentItem) (entities.Payment, error) {
	status, err := entities.ParsePaymentStatus(it.Status)
	if err != nil {
		return entities.Payment{}, fmt.Errorf("payment %s: %w", it.ID, err)
	}
	p := entities.Payment{
		ID:            it.ID,
		CorrelationID: it.CorrelationID,
		ProviderRef:   it.ProviderRef,
		UserID:        it.UserID,
		ItemID:        it.ItemID,
		Amount:        decimal.Decimal(it.Amount),
		Description:   it.Description,
		Status:        status,
		Method:        entities.PaymentMethod(it.Method),
		Provider:      it.Provider,
		PixCode:       it.PixCode,
		QRCodeURL:     it.QRCodeURL,
		ExpiresAt:     parseTime(it.ExpiresAt),
		Customer: entities.Payer{
			Name:     it.CustomerName,
			Email:    it.CustomerEmail,
			Document: it.CustomerDocument,
		},
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
	if it.PaidAt != "" {
		paidAt := parseTime(it.PaidAt)
		p.PaidAt = &paidAt
	}
	return p, nil
}
