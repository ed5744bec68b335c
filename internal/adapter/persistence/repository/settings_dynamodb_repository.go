package repository

import (
	"context"
	"strings"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultSettingsTableName = "settings"
	paymentSettingsCategory  = "payment"
)

type paymentSettingsItem struct {
	Category               string `dynamodbav:"category"`
	Provider               string `dynamodbav:"provider,omitempty"`
	BaseURL                string `dynamodbav:"base_url,omitempty"`
	MercadoPagoAccessToken string `dynamodbav:"mercadopago_access_token,omitempty"`
	SacapayAPIURL          string `dynamodbav:"sacapay_api_url,omitempty"`
	SacapayPublicToken     string `dynamodbav:"sacapay_public_token,omitempty"`
	SacapayPrivateToken    string `dynamodbav:"sacapay_private_token,omitempty"`
}

// SettingsDynamoRepository reads the live payment configuration.
//
// Table requirements:
//   - PK: category (string); payment settings live under "payment"
//
// Fields missing from the table fall back to environment variables.
type SettingsDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.ISettingsRepository = (*SettingsDynamoRepository)(nil)

func NewSettingsDynamoRepository(ddb *dynamodb.Client) *SettingsDynamoRepository {
	return &SettingsDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("SETTINGS_TABLE", defaultSettingsTableName),
	}
}

func (r *SettingsDynamoRepository) GetPaymentSettings(ctx context.Context) (entities.PaymentSettings, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"category": &types.AttributeValueMemberS{Value: paymentSettingsCategory},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentSettings{}, err
	}

	var it paymentSettingsItem
	if len(out.Item) > 0 {
		if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
			return entities.PaymentSettings{}, err
		}
	}
	return withEnvDefaults(it), nil
}

func withEnvDefaults(it paymentSettingsItem) entities.PaymentSettings {
	pick := func(stored, envKey, def string) string {
		if v := strings.TrimSpace(stored); v != "" {
			return v
		}
		return getenvDefault(envKey, def)
	}
	return entities.PaymentSettings{
		Provider:               pick(it.Provider, "PAYMENT_PROVIDER", "sacapay"),
		BaseURL:                pick(it.BaseURL, "BASE_URL", ""),
		MercadoPagoAccessToken: pick(it.MercadoPagoAccessToken, "MERCADOPAGO_ACCESS_TOKEN", ""),
		SacapayAPIURL:          pick(it.SacapayAPIURL, "PAYMENT_API_URL", "https://api.sacapay.com.br"),
		SacapayPublicToken:     pick(it.SacapayPublicToken, "SACAPAY_PUBLIC_TOKEN", ""),
		SacapayPrivateToken:    pick(it.SacapayPrivateToken, "SACAPAY_PRIVATE_TOKEN", ""),
	}
}
