package asset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Config places slide images in an S3 compatible bucket.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"    toml:"bucket"`
	Region    string `mapstructure:"region"    toml:"region"`
	Prefix    string `mapstructure:"prefix"    toml:"prefix"`    // key prefix inside the bucket
	Endpoint  string `mapstructure:"endpoint"  toml:"endpoint"`  // set for minio and friends, enables path style
	PublicURL string `mapstructure:"publicURL" toml:"publicURL"` // CDN or bucket url, defaults to the aws host name
}

// S3API is the subset of the s3 client the store calls.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(
		ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images at <prefix>/<owner id>/<file name>.
type S3Store struct {
	client    S3API
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store loads the default aws credential chain and builds the client.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: load aws configuration: %w", ErrStorage, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient uses the given client as is.
func NewS3StoreWithClient(client S3API, cfg S3Config) *S3Store {
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: public,
	}
}

func (s *S3Store) key(ref Ref) string {
	return path.Join(s.prefix, strconv.FormatUint(ref.OwnerID, 10), ref.Filename)
}

// Store uploads the image with its detected content type.
func (s *S3Store) Store(ctx context.Context, ownerID uint64, file File) (Ref, error) {
	name, err := CleanName(file.Name)
	if err != nil {
		return Ref{}, err
	}

	mtype, content, err := sniff(file.Content)
	if err != nil {
		return Ref{}, err
	}

	buf := bytes.NewBuffer(nil)
	if _, err = buf.ReadFrom(content); err != nil {
		return Ref{}, fmt.Errorf("%w: read upload: %w", ErrStorage, err)
	}

	ref := Ref{OwnerID: ownerID, Filename: name}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(ref)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(mtype),
	})
	if err != nil {
		return Ref{}, fmt.Errorf("%w: put %s: %w", ErrStorage, s.key(ref), err)
	}

	log.Debug().Uint64("owner", ownerID).Str("key", s.key(ref)).Msg("asset uploaded")

	return ref, nil
}

// URLFor joins the public url and the escaped object key.
func (s *S3Store) URLFor(ref Ref) string {
	return s.publicURL + "/" + escapeKey(s.key(ref))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}

	return strings.Join(parts, "/")
}

// Delete removes the object. S3 answers a delete of a missing key with success.
func (s *S3Store) Delete(ctx context.Context, ref Ref) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrStorage, s.key(ref), err)
	}

	return nil
}

// Copy duplicates the object server side.
func (s *S3Store) Copy(ctx context.Context, ref Ref, newOwnerID uint64) (Ref, error) {
	copied := Ref{OwnerID: newOwnerID, Filename: ref.Filename}

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(escapeKey(s.bucket + "/" + s.key(ref))),
		Key:        aws.String(s.key(copied)),
	})
	if err != nil {
		return Ref{}, fmt.Errorf("%w: copy %s: %w", ErrStorage, s.key(ref), err)
	}

	return copied, nil
}
