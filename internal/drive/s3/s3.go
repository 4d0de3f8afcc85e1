// Package s3 provides an S3-compatible drive with metrics.
package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Config is a JSON-serializable config for S3 drives.
type Config struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	UseSSL    bool   `json:"use_ssl"`
}

// API is the subset of the S3 client the drive calls.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Drive implements drive.Contents over an S3/MinIO bucket. Directories
// are key prefixes delimited by "/".
type S3Drive struct {
	name   string
	client API
	bucket string
}

// New creates a new S3 drive from a Config.
func New(ctx context.Context, name string, cfg Config) (*S3Drive, error) {
	if name == "" {
		return nil, drive.ErrInvalidName
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	d := NewWithClient(name, cfg.Bucket, client)

	// Verify bucket exists
	if err := d.checkBucket(ctx); err != nil {
		logging.Error("bucket check failed", zap.String("drive", name), zap.Error(err))
	}

	return d, nil
}

// NewWithClient creates a drive over an existing client.
func NewWithClient(name, bucket string, client API) *S3Drive {
	return &S3Drive{
		name:   name,
		client: client,
		bucket: bucket,
	}
}

// NewFromJSON creates an S3Drive from raw JSON config.
func NewFromJSON(ctx context.Context, name string, raw json.RawMessage) (*S3Drive, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse s3 config: %w", err)
	}
	return New(ctx, name, cfg)
}

func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (d *S3Drive) checkBucket(ctx context.Context) error {
	start := time.Now()
	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(d.bucket),
	})
	metrics.RecordS3Operation("head_bucket", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", d.bucket, err)
	}
	return nil
}

// Name returns the registry name of the drive.
func (d *S3Drive) Name() string { return d.name }

// Bucket returns the bucket the drive serves.
func (d *S3Drive) Bucket() string { return d.bucket }

// List returns the objects and common prefixes directly under dir.
func (d *S3Drive) List(ctx context.Context, dir string) ([]drive.Entry, error) {
	start := time.Now()
	dir = drive.Clean(dir)

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	var dirs, files []drive.Entry
	p := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.RecordS3Operation("list_objects", time.Since(start), false)
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, cp := range page.CommonPrefixes {
			full := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
			dirs = append(dirs, drive.Entry{
				Name:  path.Base(full),
				Path:  full,
				IsDir: true,
			})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// Directory marker object
				continue
			}
			files = append(files, drive.Entry{
				Name:    path.Base(key),
				Path:    key,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	metrics.RecordS3Operation("list_objects", time.Since(start), true)
	metrics.RecordListing(d.name, time.Since(start))

	if dir != "" && len(dirs) == 0 && len(files) == 0 {
		if _, err := d.Stat(ctx, dir); err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
	}
	return append(dirs, files...), nil
}

// Stat resolves a key as an object first, then as a prefix.
func (d *S3Drive) Stat(ctx context.Context, p string) (drive.Entry, error) {
	p = drive.Clean(p)
	if p == "" {
		return drive.Entry{IsDir: true}, nil
	}

	start := time.Now()
	head, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(p),
	})
	metrics.RecordS3Operation("head_object", time.Since(start), err == nil)
	if err == nil {
		return drive.Entry{
			Name:    path.Base(p),
			Path:    p,
			Size:    aws.ToInt64(head.ContentLength),
			ModTime: aws.ToTime(head.LastModified),
		}, nil
	}

	start = time.Now()
	out, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.bucket),
		Prefix:  aws.String(p + "/"),
		MaxKeys: aws.Int32(1),
	})
	metrics.RecordS3Operation("list_objects", time.Since(start), err == nil)
	if err != nil {
		return drive.Entry{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return drive.Entry{}, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return drive.Entry{
		Name:  path.Base(p),
		Path:  p,
		IsDir: true,
	}, nil
}

// Type returns "s3".
func (d *S3Drive) Type() string { return "s3" }

// Close is a no-op for S3 drives.
func (d *S3Drive) Close() error { return nil }
