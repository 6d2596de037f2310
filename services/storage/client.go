package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const publicObjectPrefix = "/storage/v1/object/public/"

// Client handles object storage operations against an S3-compatible backend
type Client struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
}

// Config holds configuration for the storage client
type Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
	BaseURL   string
}

// NewClient creates a new storage client
func NewClient(config Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
	}, nil
}

// Upload stores a file under a generated key in the given folder and
// returns its public URL.
func (c *Client) Upload(ctx context.Context, folder, filename string, data io.Reader) (string, error) {
	key := GenerateKey(folder, filename)

	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(ContentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return PublicURL(c.baseURL, c.bucket, key), nil
}

// Delete removes the object a public URL points at. URLs that do not
// belong to this storage backend are rejected.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	bucket, key, err := ParsePublicURL(publicURL)
	if err != nil {
		return err
	}

	_, err = c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ListKeys lists object keys under a prefix
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	result, err := c.s3Client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var keys []string
	for _, obj := range result.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}

// DeleteKey removes an object by its raw key
func (c *Client) DeleteKey(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PublicURL builds the public URL for an object key
func PublicURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s%s%s/%s", baseURL, publicObjectPrefix, bucket, key)
}

// ParsePublicURL extracts the bucket and object key from a public URL.
// Returns an error for URLs that do not carry the public object prefix.
func ParsePublicURL(publicURL string) (bucket, key string, err error) {
	idx := strings.Index(publicURL, publicObjectPrefix)
	if idx < 0 {
		return "", "", fmt.Errorf("not a public object URL: %s", publicURL)
	}

	rest := publicURL[idx+len(publicObjectPrefix):]
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed object URL: %s", publicURL)
	}
	return parts[0], parts[1], nil
}

// GenerateKey generates a unique key for file storage, keeping the
// original extension
func GenerateKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

// ContentType returns the content type for a filename
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".zip":
		return "application/zip"
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "text/javascript"
	default:
		return "application/octet-stream"
	}
}
