package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	s3config "github.com/terrydolan/catmon-img-tag/internal/config"
	"github.com/terrydolan/catmon-img-tag/internal/domain"
	"github.com/terrydolan/catmon-img-tag/internal/metrics"
)

// ObjectInfo is one listing entry from the source folder.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the remote file-storage collaborator: list a folder
// newest-first, fetch file bytes, move a file into another folder. All errors
// are classified into the domain sentinels; callers never see SDK errors.
type ObjectStore interface {
	ListRecent(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
	FetchBytes(ctx context.Context, key string) ([]byte, error)
	Move(ctx context.Context, key, destPrefix string) (string, error)
}

type s3Store struct {
	client *s3.Client
	cfg    *s3config.S3Config
	log    *zap.Logger
}

func NewObjectStore(cfg *s3config.S3Config, log *zap.Logger) (ObjectStore, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				URL:               endpointURL(cfg),
				HostnameImmutable: true,
				Source:            aws.EndpointSourceCustom,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &s3Store{
		client: client,
		cfg:    cfg,
		log:    log,
	}, nil
}

// isNotFound reports whether an SDK error means the object does not exist.
// GetObject and HeadObject model the condition as *types.NoSuchKey and
// *types.NotFound respectively, but CopyObject surfaces a vanished source
// only as a generic API error carrying the NoSuchKey code, so all three
// shapes are checked.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
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

func endpointURL(cfg *s3config.S3Config) string {
	scheme := "http://"
	if cfg.UseSSL {
		scheme = "https://"
	}
	return scheme + cfg.Endpoint
}

// ListRecent returns the direct children of prefix, newest-first by
// LastModified, at most limit entries (limit <= 0 means no cap).
func (s *s3Store) ListRecent(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	var infos []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.cfg.BucketName),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			metrics.StorageErrors.WithLabelValues("list").Inc()
			s.log.Error("Failed to list source folder",
				zap.String("prefix", prefix),
				zap.Error(err))
			return nil, fmt.Errorf("list %q: %w: %v", prefix, domain.ErrStorageUnavailable, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// folder placeholder object
				continue
			}
			infos = append(infos, ObjectInfo{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified.After(infos[j].LastModified)
	})

	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}

	s.log.Info("Listed source folder",
		zap.String("prefix", prefix),
		zap.Int("count", len(infos)))

	return infos, nil
}

func (s *s3Store) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("fetch %q: %w", key, domain.ErrNotFound)
		}
		metrics.StorageErrors.WithLabelValues("fetch").Inc()
		s.log.Error("Failed to fetch object",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("fetch %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("fetch").Inc()
		return nil, fmt.Errorf("fetch %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}

	return data, nil
}

// Move relocates key into destPrefix, keeping its base name. The destination
// is probed first so a same-named file surfaces as ErrMoveConflict instead of
// being overwritten. Copy-then-delete: a failure before the delete leaves the
// source untouched.
func (s *s3Store) Move(ctx context.Context, key, destPrefix string) (string, error) {
	destKey := destPrefix + path.Base(key)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(destKey),
	})
	if err == nil {
		return "", fmt.Errorf("move %q to %q: %w", key, destKey, domain.ErrMoveConflict)
	}
	if !isNotFound(err) {
		metrics.StorageErrors.WithLabelValues("move").Inc()
		s.log.Error("Failed to probe destination",
			zap.String("key", destKey),
			zap.Error(err))
		return "", fmt.Errorf("move %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.cfg.BucketName),
		CopySource: aws.String(s.cfg.BucketName + "/" + key),
		Key:        aws.String(destKey),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("move %q: %w", key, domain.ErrNotFound)
		}
		metrics.StorageErrors.WithLabelValues("move").Inc()
		s.log.Error("Failed to copy object",
			zap.String("source", key),
			zap.String("destination", destKey),
			zap.Error(err))
		return "", fmt.Errorf("move %q: %w: %v", key, domain.ErrStorageUnavailable, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		// The copy landed, so the file now exists in both folders. Surface
		// the error; a later manual retry hits ErrMoveConflict and the
		// duplicate can be resolved by hand.
		metrics.StorageErrors.WithLabelValues("move").Inc()
		s.log.Error("Copied but failed to delete source object",
			zap.String("source", key),
			zap.String("destination", destKey),
			zap.Error(err))
		return "", fmt.Errorf("move %q: delete after copy: %w: %v", key, domain.ErrStorageUnavailable, err)
	}

	s.log.Info("Object moved",
		zap.String("source", key),
		zap.String("destination", destKey))

	return destKey, nil
}
