package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	cfg "github.com/maheshrc27/postcraft/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MediaStore persists image bytes and returns their public URL.
type MediaStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

type R2Service struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type R2Option func(*s3.Options)

// WithR2Endpoint points the client at another S3-compatible endpoint.
func WithR2Endpoint(endpoint string) R2Option {
	return func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

func NewR2Service(ctx context.Context, r2 cfg.R2, opts ...R2Option) (*R2Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
		for _, opt := range opts {
			opt(o)
		}
	})

	return &R2Service{
		client:    client,
		bucket:    r2.BucketName,
		publicURL: strings.TrimRight(r2.PublicURL, "/"),
	}, nil
}

// Store uploads data under images/<id>.<ext>.
func (r *R2Service) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key, err := objectKey(data)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return r.publicURL + "/" + key, nil
}

func objectKey(data []byte) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	ext := "bin"
	if kind, err := filetype.Match(data); err == nil && kind != types.Unknown {
		ext = kind.Extension
	}
	return "images/" + id + "." + ext, nil
}
