package content

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaStore stores uploaded images and returns their public URL.
type MediaStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// S3API is the subset of the S3 client used by S3MediaStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3MediaStore writes uploads under media/ in a bucket.
type S3MediaStore struct {
	client        S3API
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3MediaStore creates a media store. publicBaseURL is the CDN or bucket
// website prefix; when empty the virtual-hosted S3 URL is used.
func NewS3MediaStore(client S3API, bucket, publicBaseURL string) *S3MediaStore {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3MediaStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *S3MediaStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "content.media.upload")
	defer span.End()

	key := s.objectKey(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("content: s3 put %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// objectKey builds media/YYYY/MM/<uuid>-<slug><ext>.
func (s *S3MediaStore) objectKey(name string) string {
	now := s.now()
	ext := strings.ToLower(path.Ext(name))
	base := Slugify(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("media/%d/%02d/%s-%s%s", now.Year(), now.Month(), uuid.NewString(), base, ext)
}

var _ MediaStore = (*S3MediaStore)(nil)
