package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	puts []*s3.PutObjectInput
	body []byte
	err  error
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.puts = append(m.puts, input)
	m.body, _ = io.ReadAll(input.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3MediaStore_Upload(t *testing.T) {
	client := &mockS3Client{}
	store := NewS3MediaStore(client, "shop-media", "https://cdn.shop.example/")
	store.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }

	url, err := store.Upload(context.Background(), "../Shop Front.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "shop-media", *put.Bucket)
	assert.Equal(t, "image/jpeg", *put.ContentType)
	assert.True(t, strings.HasPrefix(*put.Key, "media/2026/03/"), *put.Key)
	assert.True(t, strings.HasSuffix(*put.Key, "-shop-front.jpg"), *put.Key)
	assert.Equal(t, "jpeg-bytes", string(client.body))
	assert.Equal(t, "https://cdn.shop.example/"+*put.Key, url)
}

func TestS3MediaStore_DefaultURL(t *testing.T) {
	client := &mockS3Client{}
	store := NewS3MediaStore(client, "shop-media", "")

	url, err := store.Upload(context.Background(), "!!!.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://shop-media.s3.amazonaws.com/media/"), url)
	assert.True(t, strings.HasSuffix(url, "-upload.png"), url)
}

func TestS3MediaStore_Error(t *testing.T) {
	store := NewS3MediaStore(&mockS3Client{err: errors.New("access denied")}, "shop-media", "")
	_, err := store.Upload(context.Background(), "a.png", "image/png", strings.NewReader("png"))
	assert.ErrorContains(t, err, "access denied")
}
