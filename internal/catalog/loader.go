package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Loader reads catalog snapshots.
type Loader interface {
	// Load reads a gzipped msgpack snapshot.
	Load(ctx context.Context, path string) (*Snapshot, error)
}

// fileLoader implements Loader for snapshots on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based snapshot loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a snapshot file from disk.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading catalog snapshot")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open catalog snapshot")
		return nil, fmt.Errorf("failed to open catalog snapshot %s: %w", filePath, err)
	}
	defer file.Close()

	snapshot, err := Decode(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read catalog snapshot")
		return nil, fmt.Errorf("failed to read catalog snapshot %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("ingredients", len(snapshot.Ingredients)).
		Int("products", len(snapshot.Products)).
		Int("conversions", len(snapshot.Conversions)).
		Msg("catalog snapshot loaded")

	return snapshot, nil
}

// ObjectGetter is the subset of the S3 client used by the S3 loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader implements Loader for snapshots stored in AWS S3.
type s3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates an S3 snapshot loader using the default AWS
// credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 catalog loader initialised")

	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, logger), nil
}

// NewS3LoaderWithClient creates an S3 snapshot loader around client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-catalog-loader").Logger(),
	}
}

// Load reads a snapshot object. key is the full object key.
func (l *s3Loader) Load(ctx context.Context, key string) (*Snapshot, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("loading catalog snapshot from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	snapshot, err := Decode(result.Body)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to read catalog snapshot from S3")
		return nil, fmt.Errorf("failed to read S3 object %s: %w", key, err)
	}

	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Int("products", len(snapshot.Products)).
		Msg("catalog snapshot loaded from S3")

	return snapshot, nil
}

// fallbackLoader tries S3 first, then the local file system.
type fallbackLoader struct {
	s3Loader   Loader
	fileLoader Loader
	s3Prefix   string
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that tries s3Loader with s3Prefix
// prepended to the path, then fileLoader with the path as is. A nil
// s3Loader disables the S3 attempt.
func NewFallbackLoader(s3Loader, fileLoader Loader, s3Prefix string, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		logger:     logger.With().Str("component", "fallback-catalog-loader").Logger(),
	}
}

// Load attempts S3, then the local file system.
func (l *fallbackLoader) Load(ctx context.Context, path string) (*Snapshot, error) {
	if l.s3Loader != nil {
		key := l.s3Prefix + path

		snapshot, err := l.s3Loader.Load(ctx, key)
		if err == nil {
			return snapshot, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Msg("failed to load from S3, falling back to local file system")
	}

	return l.fileLoader.Load(ctx, path)
}
