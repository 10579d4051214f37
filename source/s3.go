package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
)

const defaultS3Retries = 3

var s3RetryWait = 2 * time.Second

// S3Params configures access to an S3 bucket.
type S3Params struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	NumRetries      int
}

type s3API interface {
	manager.DownloadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Source reads byte ranges of a single S3 object.
// Every ReadAt call issues one ranged GET request.
type S3Source struct {
	ctx        context.Context
	downloader *manager.Downloader
	bucket     string
	key        string
	size       int64
	numRetries uint
	logger     log.Logger
}

// OpenS3 validates that the object exists and returns a source reading it.
// The context is used for every subsequent read.
func OpenS3(ctx context.Context, bucket, key string, params S3Params, logger log.Logger) (*S3Source, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket must not be empty")
	}
	if key == "" {
		return nil, fmt.Errorf("key must not be empty")
	}

	cfg, err := loadAWSConfig(ctx, params, logger)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3Source(ctx, s3.NewFromConfig(*cfg), bucket, key, params.NumRetries, logger)
}

func newS3Source(ctx context.Context, client s3API, bucket, key string, numRetries int, logger log.Logger) (*S3Source, error) {
	if numRetries <= 0 {
		numRetries = defaultS3Retries
	}

	src := &S3Source{
		ctx:        ctx,
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		key:        key,
		numRetries: uint(numRetries),
		logger:     logger,
	}

	err := retry.Times(src.numRetries).Wait(s3RetryWait).TryWithAbort(func(attempt uint) (error, bool) {
		out, err := client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var apiError smithy.APIError
			if errors.As(err, &apiError) {
				if _, ok := apiError.(*types.NotFound); ok {
					logger.Debugf("key %s not found in bucket %s: %s", key, bucket, err)
					return fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound), true
				}
			}
			logger.Debugf("head object %s (attempt %d): %s", key, attempt, err)
			return fmt.Errorf("head object: %w", err), false
		}

		src.size = aws.ToInt64(out.ContentLength)
		return nil, true
	})
	if err != nil {
		return nil, err
	}

	return src, nil
}

// Size returns the object size reported by S3.
func (s *S3Source) Size() int64 {
	return s.size
}

// ReadAt downloads len(p) bytes of the object starting at offset off.
func (s *S3Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= s.size {
		return 0, fmt.Errorf("offset %d outside object of %d bytes", off, s.size)
	}

	end := off + int64(len(p)) - 1
	if end >= s.size {
		end = s.size - 1
	}

	var n int
	err := retry.Times(s.numRetries).Wait(s3RetryWait).TryWithAbort(func(attempt uint) (error, bool) {
		buf := manager.NewWriteAtBuffer(make([]byte, 0, len(p)))
		_, err := s.downloader.Download(s.ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
			Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
		})
		if err != nil {
			if s.ctx.Err() != nil {
				return s.ctx.Err(), true
			}
			s.logger.Debugf("get object range %d-%d (attempt %d): %s", off, end, attempt, err)
			return fmt.Errorf("get object: %w", err), false
		}

		n = copy(p, buf.Bytes())
		return nil, true
	})
	if err != nil {
		return n, err
	}
	want := int(end - off + 1)
	if n < want {
		return n, fmt.Errorf("short read: got %d of %d bytes", n, want)
	}
	if want < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close is a no-op, S3 reads hold no open resources between calls.
func (s *S3Source) Close() error {
	return nil
}

func loadAWSConfig(ctx context.Context, params S3Params, logger log.Logger) (*aws.Config, error) {
	if params.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
	}

	if params.AccessKeyID != "" && params.SecretAccessKey != "" {
		logger.Debugf("using static aws credentials")
		opts = append(opts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, "")))
	} else {
		logger.Debugf("aws credentials not defined, loading credentials from environment...")
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %v", err)
	}

	return &cfg, nil
}
