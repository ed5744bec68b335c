package repository

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// RequiredTables lists the tables this service reads or writes, resolved the
// same way the repositories resolve them.
func RequiredTables() []string {
	return []string{
		getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
		getenvDefault("PAYMENT_LOCKS_TABLE", defaultPaymentLocksTableName),
		getenvDefault("USERS_TABLE", defaultUsersTableName),
		getenvDefault("ITEMS_TABLE", defaultItemsTableName),
		getenvDefault("SETTINGS_TABLE", defaultSettingsTableName),
	}
}

func mergeNames(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// decimalAttr stores money as a DynamoDB number so catalog tooling can keep
// writing plain numbers, while the Go side never goes through float64.
type decimalAttr decimal.Decimal

func (d decimalAttr) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: decimal.Decimal(d).String()}, nil
}

func (d *decimalAttr) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		*d = decimalAttr(decimal.Zero)
		return nil
	default:
		return fmt.Errorf("unsupported attribute type %T for decimal", av)
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return err
	}
	*d = decimalAttr(parsed)
	return nil
}

func isConditionalCheckFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

// cancellationCodes returns the per-item reason codes of a cancelled
// transaction, or nil when err is not a cancellation.
func cancellationCodes(err error) []string {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	codes := make([]string, len(tce.CancellationReasons))
	for i, r := range tce.CancellationReasons {
		if r.Code != nil {
			codes[i] = *r.Code
		}
	}
	if len(codes) == 0 {
		codes = []string{"Unknown"}
	}
	return codes
}

func codeAt(codes []string, i int) string {
	if i < 0 || i >= len(codes) {
		return ""
	}
	return codes[i]
}
