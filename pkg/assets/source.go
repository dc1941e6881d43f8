package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxManifestSize bounds manifest reads from remote sources.
const maxManifestSize = 16 << 20

// ErrTooLarge is returned when a manifest exceeds maxManifestSize.
var ErrTooLarge = errors.New("assets: manifest too large")

// Source reads raw manifest bytes. Builds deployed to object storage keep
// the manifest next to the assets; local builds read it from disk.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the manifest from a local path.
type FileSource struct {
	Path string
}

// Read reads the file.
func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the manifest from an S3 object.
//
//	cfg, _ := awsconfig.LoadDefaultConfig(ctx)
//	src := assets.NewS3Source(s3.NewFromConfig(cfg), "my-bucket", "build/.vite/manifest.json")
//	manifest, err := assets.Fetch(ctx, src)
type S3Source struct {
	client S3API
	bucket string
	key    string
}

// NewS3Source creates an S3 manifest source.
func NewS3Source(client S3API, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// Read downloads the object.
func (s *S3Source) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", s, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", s, err)
	}
	if len(data) > maxManifestSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (s *S3Source) String() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch reads and parses a manifest from src.
func Fetch(ctx context.Context, src Source) (*Manifest, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}
	return m, nil
}

// Refresh re-reads src into m and reports whether the contents changed.
func Refresh(ctx context.Context, m *Manifest, src Source) (bool, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return false, err
	}
	return m.Update(data)
}
