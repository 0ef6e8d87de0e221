package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/brightops/adpulse/internal/config"
)

// Archive copies each run's reports to S3, keyed by date so retention
// policies can expire old prefixes.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchive returns nil when no bucket is configured.
func NewArchive(ctx context.Context, cfg appconfig.StorageConfig) (*Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	var awsCfg aws.Config
	var err error
	if cfg.AWSProfile != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
			awsconfig.WithSharedConfigProfile(cfg.AWSProfile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Archive{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

// Put archives both renderings under <prefix>/<yyyy>/<mm>/<dd>/.
func (a *Archive) Put(ctx context.Context, generatedAt time.Time, textReport, htmlReport string) error {
	datePrefix := path.Join(a.prefix, generatedAt.UTC().Format("2006/01/02"))
	stamp := generatedAt.UTC().Format("150405")

	if err := a.putObject(ctx, path.Join(datePrefix, "report-"+stamp+".txt"), []byte(textReport), "text/plain; charset=utf-8"); err != nil {
		return err
	}
	return a.putObject(ctx, path.Join(datePrefix, "report-"+stamp+".html"), []byte(htmlReport), "text/html; charset=utf-8")
}

func (a *Archive) putObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting %s to S3: %w", key, err)
	}
	return nil
}
