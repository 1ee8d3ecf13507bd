package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
)

// ObjectFetcher downloads a whole object into w.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string, w io.WriterAt) error
}

// S3Fetcher downloads objects with the S3 transfer manager, which issues
// concurrent ranged GETs and returns once the object is complete.
type S3Fetcher struct {
	once       sync.Once
	newClient  func(ctx context.Context) (manager.DownloadAPIClient, error)
	downloader *manager.Downloader
	err        error
}

// NewS3Fetcher creates a fetcher that loads the default AWS configuration
// (environment, shared config, instance role) on first use.
func NewS3Fetcher(optFns ...func(*config.LoadOptions) error) *S3Fetcher {
	return &S3Fetcher{
		newClient: func(ctx context.Context) (manager.DownloadAPIClient, error) {
			cfg, err := config.LoadDefaultConfig(ctx, optFns...)
			if err != nil {
				return nil, fmt.Errorf("%w: load aws config: %v", errs.ErrConfiguration, err)
			}
			return s3.NewFromConfig(cfg), nil
		},
	}
}

// NewS3FetcherWithClient creates a fetcher around an existing client.
func NewS3FetcherWithClient(client manager.DownloadAPIClient) *S3Fetcher {
	return &S3Fetcher{
		newClient: func(context.Context) (manager.DownloadAPIClient, error) {
			return client, nil
		},
	}
}

// Fetch downloads s3://bucket/key into w.
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string, w io.WriterAt) error {
	f.once.Do(func() {
		client, err := f.newClient(ctx)
		if err != nil {
			f.err = err
			return
		}
		f.downloader = manager.NewDownloader(client)
	})
	if f.err != nil {
		return f.err
	}

	_, err := f.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return nil
	}

	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var apiErr smithy.APIError
	switch {
	case errors.As(err, &noKey), errors.As(err, &noBucket):
		return fmt.Errorf("%w: s3://%s/%s", errs.ErrSourceNotFound, bucket, key)
	case errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound":
		return fmt.Errorf("%w: s3://%s/%s", errs.ErrSourceNotFound, bucket, key)
	default:
		return fmt.Errorf("%w: get s3://%s/%s: %v", errs.ErrTransport, bucket, key, err)
	}
}
