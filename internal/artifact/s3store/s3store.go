package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

const latestObject = "latest.pdf"

// Config holds S3-compatible storage settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // MinIO or another S3-compatible service
	AccessKey string
	SecretKey string
	Prefix    string
	PathStyle bool
}

// Store keeps one object per artifact plus a latest.pdf copy. Expiry is left to
// the bucket's lifecycle rules.
type Store struct {
	client *s3.Client
	cfg    Config
}

func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("s3 store: bucket and credentials are required")
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &Store{client: client, cfg: cfg}, nil
}

func (s *Store) Save(ctx context.Context, a *artifact.Artifact) error {
	for _, name := range []string{a.Key + ".pdf", latestObject} {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.Bucket),
			Key:           aws.String(s.objectKey(name)),
			Body:          bytes.NewReader(a.Content),
			ContentLength: aws.Int64(int64(len(a.Content))),
			ContentType:   aws.String(a.ContentType),
			Metadata:      encodeMetadata(a),
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) Load(ctx context.Context, key string) (*artifact.Artifact, error) {
	name := latestObject
	if key != artifact.Latest {
		name = key + ".pdf"
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, artifact.ErrNotFound
		}

		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	a := decodeMetadata(out.Metadata)
	a.Content = content
	a.ContentType = aws.ToString(out.ContentType)

	return a, nil
}

func (s *Store) objectKey(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}

	return path.Join(s.cfg.Prefix, name)
}

// S3 lower-cases user metadata keys, so the names are lower case already.
func encodeMetadata(a *artifact.Artifact) map[string]string {
	return map[string]string{
		"artifact-key": a.Key,
		"page-format":  a.PageFormat,
		"filename":     a.Filename,
		"created-at":   a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeMetadata(md map[string]string) *artifact.Artifact {
	a := &artifact.Artifact{
		Key:        md["artifact-key"],
		PageFormat: md["page-format"],
		Filename:   md["filename"],
	}

	if t, err := time.Parse(time.RFC3339Nano, md["created-at"]); err == nil {
		a.CreatedAt = t
	}

	if a.Filename == "" {
		a.Filename = artifact.DefaultFilename
	}

	return a
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}

var _ artifact.Store = (*Store)(nil)
