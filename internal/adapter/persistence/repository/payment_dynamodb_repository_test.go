package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

func TestPaymentItem_StorageShape(t *testing.T) {
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	paidAt := created.Add(time.Minute)
	p := entities.Payment{
		ID:            "pay-1",
		CorrelationID: "corr-1",
		UserID:        "user-1",
		ItemID:        "item-1",
		Amount:        decimal.RequireFromString("99.90"),
		Status:        entities.PaymentStatusApproved,
		Method:        entities.PaymentMethodPix,
		Provider:      entities.ProviderFallback,
		PixCode:       "000201",
		ExpiresAt:     created.Add(30 * time.Minute),
		CreatedAt:     created,
		UpdatedAt:     paidAt,
		PaidAt:        &paidAt,
	}

	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	amount, ok := av["amount"].(*types.AttributeValueMemberN)
	if !ok || amount.Value != "99.9" {
		t.Fatalf("expected amount stored as number, got %#v", av["amount"])
	}
	if _, ok := av["provider_ref"]; ok {
		t.Fatalf("expected empty provider_ref to be omitted for the sparse index")
	}

	back, err := unmarshalPayment(av)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !back.Amount.Equal(p.Amount) || back.Status != p.Status || back.PaidAt == nil || !back.PaidAt.Equal(paidAt) {
		t.Fatalf("unexpected payment %+v", back)
	}
	if back.Amount.StringFixed(2) != "99.90" {
		t.Fatalf("expected two decimal rendering, got %s", back.Amount.StringFixed(2))
	}
}

func TestFromPaymentItem_RejectsUnknownStatus(t *testing.T) {
	_, err := fromPaymentItem(paymentItem{ID: "pay-1", Status: "refunded"})
	if err == nil || !strings.Contains(err.Error(), "refunded") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestDecimalAttr_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   types.AttributeValue
		want string
		err  bool
	}{
		{"number", &types.AttributeValueMemberN{Value: "10.5"}, "10.5", false},
		{"string", &types.AttributeValueMemberS{Value: "7"}, "7", false},
		{"null", &types.AttributeValueMemberNULL{Value: true}, "0", false},
		{"bool", &types.AttributeValueMemberBOOL{Value: true}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d decimalAttr
			err := d.UnmarshalDynamoDBAttributeValue(tc.in)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || decimal.Decimal(d).String() != tc.want {
				t.Fatalf("expected %s, got %s / %v", tc.want, decimal.Decimal(d).String(), err)
			}
		})
	}
}

func TestStatusUpdate(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("approval sets paid_at", func(t *testing.T) {
		upd := statusUpdate("payments", "pay-1", entities.PaymentStatusApproved, at, &at)
		if !strings.Contains(aws.ToString(upd.UpdateExpression), "#paid = :paid") {
			t.Fatalf("expected paid_at in %q", aws.ToString(upd.UpdateExpression))
		}
		if aws.ToString(upd.ConditionExpression) != "attribute_exists(#id) AND #status = :pending" {
			t.Fatalf("unexpected condition %q", aws.ToString(upd.ConditionExpression))
		}
	})

	t.Run("cancel leaves paid_at alone", func(t *testing.T) {
		upd := statusUpdate("payments", "pay-1", entities.PaymentStatusCancelled, at, nil)
		if strings.Contains(aws.ToString(upd.UpdateExpression), "paid") {
			t.Fatalf("unexpected paid_at in %q", aws.ToString(upd.UpdateExpression))
		}
		status := upd.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
		if status.Value != "cancelled" {
			t.Fatalf("expected cancelled, got %s", status.Value)
		}
	})
}

func TestAttachPixInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fallback := attachPixInput("payments", "pay-1", entities.PixCharge{PixCode: "000201", Provider: entities.ProviderFallback, ExpiresAt: now}, now)
	if strings.Contains(aws.ToString(fallback.UpdateExpression), "#ref") {
		t.Fatalf("expected no provider_ref for fallback, got %q", aws.ToString(fallback.UpdateExpression))
	}
	if fallback.ReturnValues != types.ReturnValueAllNew {
		t.Fatalf("expected ALL_NEW")
	}

	provider := attachPixInput("payments", "pay-1", entities.PixCharge{PixCode: "000201", ProviderRef: "123", Provider: entities.ProviderMercadoPago}, now)
	ref, ok := provider.ExpressionAttributeValues[":ref"].(*types.AttributeValueMemberS)
	if !ok || ref.Value != "123" {
		t.Fatalf("expected provider_ref 123, got %#v", provider.ExpressionAttributeValues[":ref"])
	}
}

func TestGrantUpdate(t *testing.T) {
	rec := entities.PurchaseRecord{
		ItemID:      "item-1",
		Amount:      decimal.RequireFromString("49.90"),
		Method:      entities.PaymentMethodPix,
		PurchasedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		PaymentID:   "pay-1",
	}
	upd, err := grantUpdate("users", "user-1", rec)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if aws.ToString(upd.ConditionExpression) != "attribute_exists(#id) AND NOT contains(#owned, :item)" {
		t.Fatalf("unexpected condition %q", aws.ToString(upd.ConditionExpression))
	}
	set, ok := upd.ExpressionAttributeValues[":itemset"].(*types.AttributeValueMemberSS)
	if !ok || len(set.Value) != 1 || set.Value[0] != "item-1" {
		t.Fatalf("expected string set with item-1, got %#v", upd.ExpressionAttributeValues[":itemset"])
	}
	list, ok := upd.ExpressionAttributeValues[":rec"].(*types.AttributeValueMemberL)
	if !ok || len(list.Value) != 1 {
		t.Fatalf("expected one-element list, got %#v", upd.ExpressionAttributeValues[":rec"])
	}
	var items []purchaseRecordItem
	if err := attributevalue.Unmarshal(list, &items); err != nil {
		t.Fatalf("expected decodable record, got %v", err)
	}
	if items[0].PaymentID != "pay-1" || items[0].Method != "pix" {
		t.Fatalf("unexpected record %+v", items[0])
	}
}

func TestFromUserItem(t *testing.T) {
	u := fromUserItem(userItem{
		ID:           "user-1",
		OwnedItemIDs: []string{"item-1"},
		PurchaseHistory: []purchaseRecordItem{
			{ItemID: "item-1", Amount: decimalAttr(decimal.NewFromInt(10)), Method: "manual", PurchasedAt: "2026-03-10T12:00:00Z"},
		},
	})
	if !u.Owns("item-1") || len(u.PurchaseHistory) != 1 {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PurchaseHistory[0].Method != entities.PaymentMethodManual || u.PurchaseHistory[0].PurchasedAt.IsZero() {
		t.Fatalf("unexpected record %+v", u.PurchaseHistory[0])
	}
}

func TestFromCatalogItem_ActiveDefault(t *testing.T) {
	if !fromCatalogItem(catalogItem{ID: "item-1"}).Active {
		t.Fatalf("expected missing flag to mean active")
	}
	inactive := false
	if fromCatalogItem(catalogItem{ID: "item-1", IsActive: &inactive}).Active {
		t.Fatalf("expected explicit false to be inactive")
	}
}

func TestWithEnvDefaults(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "mercadopago")
	t.Setenv("BASE_URL", "https://env.example.com")
	t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "TEST-env")
	t.Setenv("PAYMENT_API_URL", "")

	s := withEnvDefaults(paymentSettingsItem{Category: "payment", BaseURL: "https://stored.example.com"})
	if s.Provider != "mercadopago" || s.MercadoPagoAccessToken != "TEST-env" {
		t.Fatalf("expected env fallbacks, got %+v", s)
	}
	if s.BaseURL != "https://stored.example.com" {
		t.Fatalf("expected stored value to win, got %q", s.BaseURL)
	}
	if s.SacapayAPIURL != "https://api.sacapay.com.br" {
		t.Fatalf("expected default sacapay url, got %q", s.SacapayAPIURL)
	}
}

func TestCancellationCodes(t *testing.T) {
	err := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
	}
	codes := cancellationCodes(err)
	if codeAt(codes, 1) != codeConditionalCheckFailed || codeAt(codes, 5) != "" {
		t.Fatalf("unexpected codes %v", codes)
	}
	if cancellationCodes(errors.New("boom")) != nil {
		t.Fatalf("expected nil for non-transaction errors")
	}
}

func TestCreatePendingError(t *testing.T) {
	cancelled := func(codes ...string) error {
		reasons := make([]types.CancellationReason, len(codes))
		for i, c := range codes {
			reasons[i] = types.CancellationReason{Code: aws.String(c)}
		}
		return &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	if err := createPendingError(cancelled("None", "ConditionalCheckFailed")); !errors.Is(err, interfaces.ErrPendingPaymentExists) {
		t.Fatalf("expected ErrPendingPaymentExists, got %v", err)
	}
	if err := createPendingError(cancelled("None", "TransactionConflict")); !errors.Is(err, interfaces.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate for a lock conflict, got %v", err)
	}
	plain := errors.New("throttled")
	if err := createPendingError(plain); err != plain {
		t.Fatalf("expected other errors untouched, got %v", err)
	}
}

func TestRequiredTables(t *testing.T) {
	t.Setenv("PAYMENTS_TABLE", "")
	t.Setenv("PAYMENT_LOCKS_TABLE", "locks_v2")
	t.Setenv("USERS_TABLE", "")
	t.Setenv("ITEMS_TABLE", "")
	t.Setenv("SETTINGS_TABLE", "")

	got := strings.Join(RequiredTables(), ",")
	if got != "payments,locks_v2,users,items,settings" {
		t.Fatalf("unexpected tables %s", got)
	}
}
