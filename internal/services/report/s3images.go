package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/ecolight/internal/config"
)

// s3API подмножество клиента S3, которым пользуется хранилище.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3ImageStore хранит изображения обращений в бакете S3 (или MinIO)
// под ключами reports/<uuid><ext>.
type S3ImageStore struct {
	client    s3API
	bucket    string
	publicURL string
}

// NewS3ImageStore создает клиент по настройкам. Без ключей доступа
// используется стандартная цепочка учетных данных AWS.
func NewS3ImageStore(ctx context.Context, cfg config.ImageStorage) (*S3ImageStore, error) {
	const op = "services.NewS3ImageStore"

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return newS3ImageStore(client, cfg.S3Bucket, cfg.S3PublicURL), nil
}

func newS3ImageStore(client s3API, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Save проверяет тип и размер изображения и загружает его в бакет.
// Возвращает URL вида <publicURL>/reports/<uuid><ext>.
func (s *S3ImageStore) Save(ctx context.Context, r io.Reader) (string, error) {
	const op = "services.S3ImageStore.Save"

	ext, contentType, body, err := sniffImage(r)
	if errors.Is(err, ErrImageUnsupported) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// Клиенту нужен Seeker для подписи тела, поэтому изображение читается целиком.
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	key := reportsDir + "/" + uuid.NewString() + ext
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicURL + "/" + key, nil
}

// Remove удаляет объект по публичному URL. S3 не считает ошибкой удаление
// отсутствующего ключа.
func (s *S3ImageStore) Remove(ctx context.Context, publicURL string) error {
	const op = "services.S3ImageStore.Remove"

	key, ok := strings.CutPrefix(publicURL, s.publicURL+"/")
	if !ok || !strings.HasPrefix(key, reportsDir+"/") || strings.Contains(key, "..") {
		return fmt.Errorf("%s: unexpected image url %q", op, publicURL)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность бакета, используется в /health.
func (s *S3ImageStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("services.S3ImageStore.Ping: %w", err)
	}
	return nil
}
