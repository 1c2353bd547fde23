package s3

import (
	"context"
	"io"
	"os"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

type ObjectStorage interface {
	GetObject(ctx context.Context, key string, opts ...oss.Option) (io.ReadCloser, error)
	PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error
}

type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Client is an ObjectStorage backed by one aliyun oss bucket.
type Client struct {
	bucket *oss.Bucket
}

func BucketConfigFromEnv() *BucketConfig {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	bucket := os.Getenv("OSS_BUCKET")
	if bucket == "" {
		bucket = "creativehub"
	}
	return &BucketConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("OSS_ACCESS_KEY"),
		SecretKey: os.Getenv("OSS_SECRET_KEY"),
		Bucket:    bucket,
	}
}

func NewClient(c *BucketConfig) (*Client, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(c.Endpoint, c.AccessKey, c.SecretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	bucket, err := cli.Bucket(c.Bucket)
	if err != nil {
		return nil, err
	}
	return &Client{bucket: bucket}, nil
}

func (c *Client) GetObject(ctx context.Context, key string, opts ...oss.Option) (io.ReadCloser, error) {
	sp := startSpan(ctx, "get-object", key)
	if sp != nil {
		defer sp.Finish()
	}
	r, err := c.bucket.GetObject(key, opts...)
	if sp != nil {
		ext.Error.Set(sp, err != nil)
	}
	return r, err
}

func (c *Client) PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	sp := startSpan(ctx, "put-object", key)
	if sp != nil {
		defer sp.Finish()
	}
	err := c.bucket.PutObject(key, r, opts...)
	if sp != nil {
		ext.Error.Set(sp, err != nil)
	}
	return err
}

// IsNoSuchKey reports whether err is the oss error for a missing object.
func IsNoSuchKey(err error) bool {
	serErr, ok := err.(oss.ServiceError)
	return ok && serErr.Code == "NoSuchKey"
}

func startSpan(ctx context.Context, operation, key string) opentracing.Span {
	if ctx == nil {
		return nil
	}
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", key)
	return sp
}
