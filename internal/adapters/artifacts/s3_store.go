// Package artifacts archives published results to object storage.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Store writes each published result as a JSON object under
// published/<user id>/<request id>.json.
type S3Store struct {
	client s3iface.S3API
	bucket string
}

// NewS3Store creates a store using the default AWS credential chain.
func NewS3Store(region, bucket string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess), bucket), nil
}

// NewS3StoreWithClient wraps an existing S3 client.
func NewS3StoreWithClient(client s3iface.S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

var _ portssvc.ArtifactStore = (*S3Store)(nil)

type archivedResult struct {
	UserID string `json:"userID"`
	domain.PublishedResult
}

// Archive uploads the result and returns its s3:// location.
func (s *S3Store) Archive(ctx context.Context, userID string, published domain.PublishedResult) (string, error) {
	body, err := json.Marshal(archivedResult{UserID: userID, PublishedResult: published})
	if err != nil {
		return "", fmt.Errorf("failed to encode published result: %w", err)
	}

	key := fmt.Sprintf("published/%s/%s.json", userID, published.RequestID)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload result to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
