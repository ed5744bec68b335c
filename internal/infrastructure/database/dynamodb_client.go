package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Settings describes how to reach DynamoDB.
//
// Env vars (local-friendly):
//   - AWS_REGION (default: us-east-1)
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (default: local)
//   - DYNAMODB_ENDPOINT (optional; e.g. http://dynamodb:8000)
type Settings struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

func SettingsFromEnv() Settings {
	return Settings{
		Region:          getenvDefault("AWS_REGION", "us-east-1"),
		AccessKeyID:     getenvDefault("AWS_ACCESS_KEY_ID", "local"),
		SecretAccessKey: getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
		Endpoint:        strings.TrimSpace(os.Getenv("DYNAMODB_ENDPOINT")),
	}
}

// Connect builds a client from the environment.
func Connect(ctx context.Context) (*dynamodb.Client, error) {
	s := SettingsFromEnv()
	cfg, err := LoadConfig(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("load dynamodb config: %w", err)
	}
	return NewClient(cfg, s.Endpoint), nil
}

func LoadConfig(ctx context.Context, s Settings) (aws.Config, error) {
	// DynamoDB Local ignores credentials but the SDK still requires them.
	creds := credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")
	return config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(creds),
	)
}

func NewClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// describer is the slice of the client used by CheckTables.
type describer interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// CheckTables verifies at startup that every table the service writes to
// exists. Missing tables are reported together.
func CheckTables(ctx context.Context, ddb describer, tables ...string) error {
	var missing []string
	for _, name := range tables {
		_, err := ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		if err == nil {
			continue
		}
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			missing = append(missing, name)
			continue
		}
		return fmt.Errorf("describe table %s: %w", name, err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing dynamodb tables: %s", strings.Join(missing, ", "))
	}
	log.Printf("[database] dynamodb tables ready tables=%s", strings.Join(tables, ","))
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
