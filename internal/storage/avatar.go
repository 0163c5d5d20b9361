// Package storage sube avatares de usuario a un bucket S3 compatible.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AvatarStore guarda la imagen de avatar y devuelve su URL pública.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userID int64, contentType string, data []byte) (string, error)
}

type disabledStore struct {
	reason string
}

func NewDisabledStore(reason string) AvatarStore {
	return &disabledStore{reason: reason}
}

func (s *disabledStore) UploadAvatar(_ context.Context, _ int64, _ string, _ []byte) (string, error) {
	if s.reason == "" {
		return "", errors.New("avatar store disabled")
	}
	return "", errors.New(s.reason)
}

// S3Config agrupa los parámetros del bucket de avatares.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Store implementa AvatarStore sobre un bucket S3.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Endpoints tipo MinIO requieren direccionamiento por path.
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// UploadAvatar escribe la imagen bajo una clave estable por usuario, de modo
// que subir un avatar nuevo reemplaza al anterior.
func (s *S3Store) UploadAvatar(ctx context.Context, userID int64, contentType string, data []byte) (string, error) {
	key := AvatarKey(userID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// AvatarKey devuelve la clave del objeto de avatar para un usuario.
func AvatarKey(userID int64) string {
	return fmt.Sprintf("avatars/user_%d", userID)
}
