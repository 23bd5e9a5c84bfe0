package tracker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bmatcuk/doublestar/v4"
)

const s3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used to fetch exports.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures access to exports stored in S3 or an S3-compatible store.
type S3Config struct {
	Region    string `yaml:"region" koanf:"region"`
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	AccessKey string `yaml:"access_key" koanf:"access_key"`
	SecretKey string `yaml:"secret_key" koanf:"secret_key"`
}

// NewS3Client builds an S3 client. Static credentials are used when both keys
// are set, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// IsS3 reports whether the source refers to an S3 object.
func IsS3(source string) bool {
	return strings.HasPrefix(source, s3Scheme)
}

// IsLocal reports whether the source is a local file path.
func IsLocal(source string) bool {
	return !IsS3(source)
}

// splitS3 splits s3://bucket/key into bucket and key.
func splitS3(source string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(source, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 source %q: want s3://bucket/key", source)
	}
	return bucket, key, nil
}

// ResolveSources expands glob patterns into concrete file paths. S3 sources
// and plain paths pass through unchanged. The result keeps pattern order,
// with glob matches sorted, and contains no duplicates.
func ResolveSources(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if IsS3(p) || !hasMeta(p) {
			add(p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if isTrackerFile(m) {
				add(m)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}

// IsGlob reports whether a local source is a glob pattern rather than a path.
func IsGlob(source string) bool {
	return IsLocal(source) && hasMeta(source)
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func isTrackerFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// fetch returns the raw bytes of a source.
func fetch(ctx context.Context, client ObjectGetter, source string) ([]byte, error) {
	if IsLocal(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return data, nil
	}

	if client == nil {
		return nil, fmt.Errorf("reading %s: no s3 client configured", source)
	}
	bucket, key, err := splitS3(source)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", source, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return buf.Bytes(), nil
}
