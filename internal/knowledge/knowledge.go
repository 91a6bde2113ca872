// Package knowledge holds the static self-help resources returned alongside a
// classification. The base is a JSON object mapping category to
// {tips, books, videos, quotes}, read once from a local file, an http(s) URL or an
// s3://bucket/key object.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/pkg/utils"
)

const (
	fetchTimeout    = 30 * time.Second
	maxBodyBytes    = 16 << 20
	defaultS3Region = "us-east-1"
)

type loadOptions struct {
	s3Region   string
	s3Endpoint string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithS3Region sets the region for s3:// sources. Without it the region comes
// from the AWS environment, then us-east-1.
func WithS3Region(region string) LoadOption {
	return func(o *loadOptions) { o.s3Region = region }
}

// WithS3Endpoint points s3:// sources at an S3-compatible endpoint using
// path-style addressing.
func WithS3Endpoint(endpoint string) LoadOption {
	return func(o *loadOptions) { o.s3Endpoint = endpoint }
}

// Base is an immutable category to resource bundle mapping.
type Base struct {
	bundles map[string]models.ResourceBundle
}

// New builds a base from bundles. Keys are lowercased and trimmed.
func New(bundles map[string]models.ResourceBundle) *Base {
	b := &Base{bundles: make(map[string]models.ResourceBundle, len(bundles))}
	for k, v := range bundles {
		b.bundles[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return b
}

// Empty returns a base with no categories.
func Empty() *Base {
	return New(nil)
}

// Load reads the base from source: a file path, an http(s) URL, or an
// s3://bucket/key object read with credentials from the AWS environment.
func Load(ctx context.Context, source string, opts ...LoadOption) (*Base, error) {
	if source == "" {
		return nil, fmt.Errorf("knowledge source is empty")
	}
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(source, "s3://"):
		data, err = fetchS3(ctx, source, o)
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		data, err = fetch(ctx, source)
	default:
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return Parse(data)
}

// LoadOrEmpty is Load that logs a warning and returns an empty base on failure.
// An empty source yields an empty base without a warning.
func LoadOrEmpty(ctx context.Context, source string, logger *zap.Logger, opts ...LoadOption) *Base {
	logger = utils.LoggerOrNop(logger)
	if source == "" {
		return Empty()
	}
	b, err := Load(ctx, source, opts...)
	if err != nil {
		logger.Warn("knowledge base unavailable; resources will be empty",
			zap.String("source", source), zap.Error(err))
		return Empty()
	}
	logger.Info("knowledge base loaded",
		zap.String("source", source), zap.Int("categories", len(b.bundles)))
	return b
}

// Parse decodes a JSON knowledge base.
func Parse(data []byte) (*Base, error) {
	var raw map[string]models.ResourceBundle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	return New(raw), nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(source string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(source, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %s", source)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri needs a bucket and a key: %s", source)
	}
	return bucket, key, nil
}

func fetchS3(ctx context.Context, source string, o *loadOptions) ([]byte, error) {
	bucket, key, err := ParseS3URI(source)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var cfgOpts []func(*awsconfig.LoadOptions) error
	if o.s3Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(o.s3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = defaultS3Region
	}
	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.s3Endpoint != "" {
			so.BaseEndpoint = aws.String(o.s3Endpoint)
			so.UsePathStyle = true
		}
	})
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object %s: %w", source, err)
	}
	defer out.Body.Close()
	return io.ReadAll(io.LimitReader(out.Body, maxBodyBytes))
}

// Lookup returns the bundle for category. Missing categories and missing
// fields come back as empty, non-nil slices.
func (b *Base) Lookup(category string) models.ResourceBundle {
	bundle := b.bundles[strings.ToLower(strings.TrimSpace(category))]
	return models.ResourceBundle{
		Tips:   nonNil(bundle.Tips),
		Books:  nonNil(bundle.Books),
		Videos: nonNil(bundle.Videos),
		Quotes: nonNil(bundle.Quotes),
	}
}

// Categories returns the known categories in sorted order.
func (b *Base) Categories() []string {
	out := make([]string, 0, len(b.bundles))
	for k := range b.bundles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of categories.
func (b *Base) Len() int {
	return len(b.bundles)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
