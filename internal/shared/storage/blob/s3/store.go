package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/util"
)

const displayNameMetaKey = "display-name"

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// keyspace maps refs to object keys under an optional "dir/" prefix.
type keyspace string

func newKeyspace(prefix string) keyspace {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return keyspace(prefix + "/")
}

func (k keyspace) key(ref string) string {
	return string(k) + strings.TrimLeft(ref, "/")
}

// ref reverses key. ok is false for keys outside the prefix or in a
// nested "directory".
func (k keyspace) ref(key string) (string, bool) {
	ref, found := strings.CutPrefix(key, string(k))
	if !found || ref == "" || strings.Contains(ref, "/") {
		return "", false
	}
	return ref, true
}

// Store implements blob.Store using Amazon S3.
type Store struct {
	client   API
	bucket   string
	keys     keyspace
	kmsKeyID string
	now      func() time.Time
}

// New loads the default AWS credential chain and builds a store for bucket.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID), nil
}

// NewWithClient builds a store around an existing client.
func NewWithClient(client API, bucket, prefix, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		keys:     newKeyspace(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
		now:      time.Now,
	}
}

// Put streams r into a new object. Nothing is visible under the ref until
// PutObject returns.
func (s *Store) Put(ctx context.Context, r io.Reader, contentType, displayName string) (blob.Blob, error) {
	if err := ctx.Err(); err != nil {
		return blob.Blob{}, err
	}

	name := blob.StoredName(displayName)
	ref, err := blob.NewRef(name)
	if err != nil {
		return blob.Blob{}, fmt.Errorf("generate ref: %w", err)
	}
	body := util.NewChecksumReader(r)
	key := s.keys.key(ref)

	if _, err := s.client.PutObject(ctx, s.putInput(key, body, contentType, name)); err != nil {
		return blob.Blob{}, fmt.Errorf("s3 put %s/%s: %w", s.bucket, key, err)
	}
	return blob.Blob{
		Ref:         ref,
		DisplayName: name,
		ContentType: contentType,
		SizeBytes:   body.Size(),
		Checksum:    body.Sum(),
		CreatedAt:   s.now().UTC(),
	}, nil
}

func (s *Store) putInput(key string, body io.Reader, contentType, name string) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(contentType),
		Metadata:             map[string]string{displayNameMetaKey: url.PathEscape(name)},
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if s.kmsKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.kmsKeyID)
	}
	return in
}

// Open returns the object body. Missing objects map to blob.ErrNotFound.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.keys.key(ref)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	var missing *s3types.NoSuchKey
	switch {
	case errors.As(err, &missing):
		return nil, blob.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// SearchNames pages through the prefix and matches the name encoded in each
// ref, so no object metadata is fetched.
func (s *Store) SearchNames(ctx context.Context, substr string) ([]string, error) {
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(string(s.keys)),
	})

	var refs []string
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			ref, ok := s.keys.ref(aws.ToString(obj.Key))
			if ok && blob.ContainsFold(blob.NameFromRef(ref), substr) {
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

var _ blob.Store = (*Store)(nil)
