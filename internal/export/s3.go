package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies exported files into a bucket.
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewUploader wraps an existing client.
func NewUploader(client ObjectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Uploader builds an Uploader from the default AWS credential chain. A
// custom endpoint selects an S3-compatible store and path-style addressing.
func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			options.UsePathStyle = true
		}
	})
	return NewUploader(client, cfg.Bucket, cfg.Prefix), nil
}

// Key returns the object key for a local file.
func (u *Uploader) Key(file string) string {
	return path.Join(u.prefix, filepath.Base(file))
}

// Upload puts every file into the bucket under the prefix.
func (u *Uploader) Upload(ctx context.Context, files []string) error {
	for _, file := range files {
		if err := u.put(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) put(ctx context.Context, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	key := u.Key(file)
	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return fmt.Errorf("uploading %s to s3://%s/%s: %w", file, u.bucket, key, err)
	}
	logger.Info("uploaded export", logger.Fields{"bucket": u.bucket, "key": key})
	logger.IncrCounter("export.uploads")
	return nil
}
