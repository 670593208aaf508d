package storage

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// PresignTTL is how long generated upload and download URLs stay valid.
const PresignTTL = 15 * time.Minute

// Client wraps S3 for message attachments and profile avatars. Files never
// pass through the API server: clients upload and download against
// presigned URLs.
type Client struct {
	bucket string
	svc    *s3.S3
}

// NewClientFromEnv builds the client from AWS_REGION, AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and S3_BUCKET. Returns nil, nil when S3_BUCKET is
// unset so attachment support degrades to disabled instead of failing boot.
func NewClientFromEnv() (*Client, error) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, nil
	}
	cfg := &aws.Config{Region: aws.String(os.Getenv("AWS_REGION"))}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		cfg.Credentials = credentials.NewStaticCredentials(key, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &Client{bucket: bucket, svc: s3.New(sess)}, nil
}

// AttachmentKey returns a namespaced object key for a contract attachment.
func AttachmentKey(contractID uuid.UUID, filename string) string {
	return path.Join("attachments", contractID.String(), uuid.NewString()+"-"+path.Base(filename))
}

// AvatarKey returns the object key for a user's avatar.
func AvatarKey(userID uuid.UUID, filename string) string {
	return path.Join("avatars", userID.String(), uuid.NewString()+"-"+path.Base(filename))
}

// PresignUpload returns a URL the caller can PUT the file to directly.
func (c *Client) PresignUpload(key, contentType string) (string, error) {
	req, _ := c.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	url, err := req.Presign(PresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return url, nil
}

// PresignDownload returns a URL the caller can GET the object from directly.
func (c *Client) PresignDownload(key string) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(PresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign download for %s: %w", key, err)
	}
	return url, nil
}
