// Package objectstore talks to the S3-compatible bucket that holds every
// uploaded asset. The server never moves object bytes itself: it only signs
// PUT requests and issues deletes.
package objectstore

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry is the fixed lifetime of every upload grant.
const PresignExpiry = time.Hour

// ErrNotConfigured means the bucket settings are incomplete.
var ErrNotConfigured = errors.New("object store is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// Settings are the connection parameters of the bucket.
type Settings struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type S3Store struct {
	settings Settings
}

func NewS3Store(settings Settings) *S3Store {
	return &S3Store{settings: settings}
}

func (s *S3Store) client(ctx context.Context) (*s3.Client, error) {
	if s.settings.Bucket == "" || s.settings.Region == "" {
		return nil, ErrNotConfigured
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.settings.User,
			s.settings.Password,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// PresignPut returns a URL that authorizes one PUT of key with the given
// content type for PresignExpiry.
func (s *S3Store) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignPutObject(newS3PresignClient(c), ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.settings.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Delete removes key. Deleting a missing object is not an error on S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}

	_, err = deleteObject(c, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.settings.Bucket),
		Key:    aws.String(key),
	})
	return err
}
