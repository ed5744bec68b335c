package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("DYNAMODB_ENDPOINT", " http://localhost:8000 ")

	s := SettingsFromEnv()
	if s.Region != "us-east-1" || s.AccessKeyID != "local" || s.SecretAccessKey != "local" {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if s.Endpoint != "http://localhost:8000" {
		t.Fatalf("expected trimmed endpoint, got %q", s.Endpoint)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(context.Background(), Settings{Region: "sa-east-1", AccessKeyID: "ak", SecretAccessKey: "sk"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Region != "sa-east-1" {
		t.Fatalf("expected sa-east-1, got %s", cfg.Region)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "ak" {
		t.Fatalf("unexpected credentials %+v / %v", creds, err)
	}

	client := NewClient(cfg, "http://localhost:8000")
	if aws.ToString(client.Options().BaseEndpoint) != "http://localhost:8000" {
		t.Fatalf("expected endpoint override, got %q", aws.ToString(client.Options().BaseEndpoint))
	}
}

type fakeDescriber struct {
	missing map[string]bool
	err     error
}

func (f fakeDescriber) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.missing[aws.ToString(in.TableName)] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func TestCheckTables(t *testing.T) {
	if err := CheckTables(context.Background(), fakeDescriber{}, "payments", "payment_locks"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	err := CheckTables(context.Background(), fakeDescriber{missing: map[string]bool{"payments": true, "users": true}}, "payments", "users", "items")
	if err == nil || !strings.Contains(err.Error(), "payments, users") {
		t.Fatalf("expected both missing tables reported, got %v", err)
	}

	boom := errors.New("network down")
	if err := CheckTables(context.Background(), fakeDescriber{err: boom}, "payments"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
