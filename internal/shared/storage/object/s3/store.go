package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"archive-backend/internal/shared/storage/object"
)

// Store implements the read-only storage gateway over Amazon S3.
// The object key doubles as the external file ID.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a new S3-backed gateway.
func New(ctx context.Context, region, bucket, prefix string) (object.Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: normalizePrefix(prefix),
	}, nil
}

// List returns a page of files under the given folder, newest first.
func (s *Store) List(ctx context.Context, folder string, page, limit int) (object.FileList, error) {
	infos, err := s.collect(ctx, folder)
	if err != nil {
		return object.FileList{}, err
	}
	return object.Paginate(infos, page, limit), nil
}

// Search returns a page of files whose name contains query, case-insensitive.
func (s *Store) Search(ctx context.Context, query, folder string, page, limit int) (object.FileList, error) {
	infos, err := s.collect(ctx, folder)
	if err != nil {
		return object.FileList{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	matched := infos[:0]
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name), needle) {
			matched = append(matched, info)
		}
	}
	return object.Paginate(matched, page, limit), nil
}

// Stat returns metadata for a single file.
func (s *Store) Stat(ctx context.Context, fileID string) (object.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return object.FileInfo{}, err
	}

	objectKey := applyPrefix(s.prefix, fileID)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return object.FileInfo{}, object.ErrNotFound
		}
		return object.FileInfo{}, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	info := object.FileInfo{
		ID:   fileID,
		Name: path.Base(fileID),
		Path: path.Dir(fileID),
	}
	if out.ContentType != nil {
		info.MimeType = *out.ContentType
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModifiedAt = *out.LastModified
	}
	return info, nil
}

// Open downloads a file for reading.
func (s *Store) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, fileID)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Info identifies the configured bucket.
func (s *Store) Info(ctx context.Context) object.ProviderInfo {
	return object.ProviderInfo{Provider: "s3", Bucket: s.bucket, Prefix: s.prefix}
}

// Healthy checks bucket reachability.
func (s *Store) Healthy(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) collect(ctx context.Context, folder string) ([]object.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	listPrefix := applyPrefix(s.prefix, strings.Trim(folder, "/"))
	if listPrefix != "" {
		listPrefix += "/"
	}

	var infos []object.FileInfo
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(listPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", s.bucket, listPrefix, err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}
			id := stripPrefix(s.prefix, *obj.Key)
			info := object.FileInfo{
				ID:   id,
				Name: path.Base(id),
				Path: path.Dir(id),
			}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.ModifiedAt = *obj.LastModified
			}
			infos = append(infos, info)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

func stripPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	if cleanPrefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, cleanPrefix), "/")
}

var _ object.Store = (*Store)(nil)
