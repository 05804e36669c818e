package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/klikk/verify-api/internal/domain"
)

// VerificationRepo is the durable append-only backend for issued codes.
// PK: code_id (ULID). GSI identity-index (identity, code_id) serves
// latest-active lookups: ULIDs sort by creation time, so the newest row for
// an identity is the one with the greatest code_id.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Issue soft-invalidates every active row for the identity, then inserts the
// new record. The insert is conditional on code_id uniqueness; ULID collisions
// don't happen in practice, but the condition makes the invariant explicit.
func (r *VerificationRepo) Issue(ctx context.Context, v *domain.VerificationCode) error {
	active, err := r.activeForIdentity(ctx, v.Identity)
	if err != nil {
		return fmt.Errorf("query active codes: %w", err)
	}
	for i := range active {
		if err := r.MarkConsumed(ctx, active[i].CodeID); err != nil {
			return fmt.Errorf("invalidate prior code %s: %w", active[i].CodeID, err)
		}
	}

	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(code_id)"),
	})
	return err
}

func (r *VerificationRepo) LatestActive(ctx context.Context, identity string) (*domain.VerificationCode, error) {
	active, err := r.activeForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no code for identity: %w", domain.ErrNotFound)
	}
	latest := &active[0]
	for i := 1; i < len(active); i++ {
		if active[i].CodeID > latest.CodeID {
			latest = &active[i]
		}
	}
	return latest, nil
}

func (r *VerificationRepo) RecordAttempt(ctx context.Context, codeID string) (*domain.VerificationCode, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("code_id", codeID),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(code_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("code record gone: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	var v domain.VerificationCode
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, fmt.Errorf("unmarshal verification code: %w", err)
	}
	return &v, nil
}

// MarkConsumed sets consumed=true. Idempotent: re-consuming an already
// consumed row is a plain overwrite, and a missing row is a no-op.
func (r *VerificationRepo) MarkConsumed(ctx context.Context, codeID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"consumed": true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("code_id", codeID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(code_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			slog.Warn("mark consumed on missing row", "code_id", codeID)
			return nil
		}
	}
	return err
}

func (r *VerificationRepo) activeForIdentity(ctx context.Context, identity string) ([]domain.VerificationCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("identity-index"),
		KeyConditionExpression: aws.String("#i = :identity"),
		FilterExpression:       aws.String("consumed = :f"),
		ExpressionAttributeNames: map[string]string{
			"#i": "identity",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":identity": &types.AttributeValueMemberS{Value: identity},
			":f":        &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	var codes []domain.VerificationCode
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &codes); err != nil {
		return nil, fmt.Errorf("unmarshal verification codes: %w", err)
	}
	return codes, nil
}
