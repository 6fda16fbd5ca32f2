package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pawmart/api/internal/config"
)

// ErrUnsupportedContentType is returned for uploads that are not images.
var ErrUnsupportedContentType = errors.New("only image uploads are accepted")

// uploadURLExpiry bounds how long a presigned PUT stays usable.
const uploadURLExpiry = 15 * time.Minute

// ImageUpload describes where the client should PUT a listing image and the URL it will be served from.
type ImageUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	PresignListingImageUpload(ctx context.Context, filename, contentType string) (*ImageUpload, error)
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	bucket        string
	region        string
	publicBaseURL string
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service from the AWS settings in cfg.
func NewS3Storage(ctx context.Context, cfg *config.Config) (IS3Storage, error) {
	if !cfg.S3Enabled() {
		return nil, errors.New("S3 storage requires AWS_S3_BUCKET and AWS_REGION")
	}

	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Storage{
		bucket:        cfg.AwsS3Bucket,
		region:        cfg.AwsRegion,
		publicBaseURL: strings.TrimRight(cfg.ImageBaseS3URL, "/"),
		presignClient: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
	}, nil
}

// objectKey builds a collision-free key, keeping only the extension of the client's filename.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	return fmt.Sprintf("listings/%s%s", uuid.NewString(), ext)
}

func (s *s3Storage) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// PresignListingImageUpload creates a pre-signed PUT URL for a new listing image.
func (s *s3Storage) PresignListingImageUpload(ctx context.Context, filename, contentType string) (*ImageUpload, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrUnsupportedContentType
	}

	key := objectKey(filename)
	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", key, err)
	}

	log.Printf("Generated presigned URL for key: %s", key)
	return &ImageUpload{
		UploadURL: presignedReq.URL,
		ObjectKey: key,
		ImageURL:  s.publicURL(key),
		ExpiresAt: time.Now().UTC().Add(uploadURLExpiry),
	}, nil
}
