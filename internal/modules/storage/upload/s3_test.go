package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/albedo-support/api/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	types   map[string]string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]string{}, types: map[string]string{}}
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = string(data)
	b.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := b.objects[aws.ToString(in.Key)]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (b *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(b.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreURLs(t *testing.T) {
	cases := []struct {
		cfg  config.S3RuntimeConfig
		want string
	}{
		{config.S3RuntimeConfig{Bucket: "media", Region: "eu-west-1"}, "https://media.s3.eu-west-1.amazonaws.com/images/a.png"},
		{config.S3RuntimeConfig{Bucket: "media", Endpoint: "http://minio:9000/"}, "http://minio:9000/media/images/a.png"},
		{config.S3RuntimeConfig{Bucket: "media", PublicURL: "https://cdn.example.com/", Prefix: "/support/"}, "https://cdn.example.com/support/images/a.png"},
	}
	for _, tc := range cases {
		store := NewS3Store(newFakeBucket(), tc.cfg)
		assert.Equal(t, tc.want, store.URL("images/a.png"))

		key, ok := store.KeyFromURL(tc.want)
		require.True(t, ok)
		assert.Equal(t, "images/a.png", key)
	}
}

func TestS3StoreSaveAndDelete(t *testing.T) {
	bucket := newFakeBucket()
	store := NewS3Store(bucket, config.S3RuntimeConfig{Bucket: "media", PublicURL: "https://cdn.example.com", Prefix: "kb"})
	svc := NewService(store)
	ctx := context.Background()

	res, err := svc.Save(ctx, TypeImage, "logo.svg", strings.NewReader("<svg/>"), 6)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.URL, "https://cdn.example.com/kb/images/"), res.URL)

	require.Len(t, bucket.objects, 1)
	for key, body := range bucket.objects {
		assert.True(t, strings.HasPrefix(key, "kb/images/"))
		assert.Equal(t, "<svg/>", body)
		assert.Equal(t, "image/svg+xml", bucket.types[key])
	}

	found, err := svc.Delete(ctx, res.URL)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, bucket.objects)

	found, err = svc.Delete(ctx, res.URL)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.Delete(ctx, "https://elsewhere.example.com/kb/images/x.png")
	assert.True(t, errors.Is(err, ErrInvalidURL))

	_, err = svc.Save(ctx, TypeImage, "run.sh", strings.NewReader("#!"), 2)
	var extErr *ExtensionError
	assert.True(t, errors.As(err, &extErr))
	assert.Empty(t, bucket.objects)
}
