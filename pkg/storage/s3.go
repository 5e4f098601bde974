package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Category identifies an upload kind, each with its own type and size limits.
type Category string

const (
	// CategoryLogo is a school branding logo.
	CategoryLogo Category = "logos"
	// CategoryEvidence is a logbook evidence attachment.
	CategoryEvidence Category = "evidence"
	// CategoryRoster is a bulk-onboarding CSV roster.
	CategoryRoster Category = "rosters"
)

// Per-category upload size ceilings.
const (
	MaxLogoSize     = 2 * 1024 * 1024
	MaxEvidenceSize = 5 * 1024 * 1024
	MaxRosterSize   = 1 * 1024 * 1024
)

var allowedTypes = map[Category]map[string]string{
	CategoryLogo: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	},
	CategoryEvidence: {
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	},
	CategoryRoster: {
		"text/csv":                 ".csv",
		"application/vnd.ms-excel": ".csv",
	},
}

var allowedExtensions = map[Category]map[string]bool{
	CategoryLogo:     {".jpg": true, ".jpeg": true, ".png": true, ".webp": true},
	CategoryEvidence: {".jpg": true, ".jpeg": true, ".png": true, ".pdf": true},
	CategoryRoster:   {".csv": true},
}

// MaxSize returns the size ceiling in bytes for the category.
func MaxSize(cat Category) int64 {
	switch cat {
	case CategoryLogo:
		return MaxLogoSize
	case CategoryEvidence:
		return MaxEvidenceSize
	case CategoryRoster:
		return MaxRosterSize
	}
	return 0
}

// ValidateUpload checks content type, extension and size against the category limits.
func ValidateUpload(cat Category, contentType, filename string, size int64) error {
	if max := MaxSize(cat); max == 0 || size > max {
		return fmt.Errorf("file exceeds %d byte limit for %s uploads", MaxSize(cat), cat)
	}
	ext := strings.ToLower(path.Ext(filename))
	if contentType != "" {
		if _, ok := allowedTypes[cat][strings.ToLower(contentType)]; ok {
			return nil
		}
	}
	if allowedExtensions[cat][ext] {
		return nil
	}
	return fmt.Errorf("file type not allowed for %s uploads", cat)
}

// ObjectKey builds the S3 key for an upload: <category>/<school>/<name>.
func ObjectKey(cat Category, schoolID, name string) string {
	return fmt.Sprintf("%s/%s/%s", cat, schoolID, name)
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	UploadsBucket        string
	PresignExpireMinutes int
}

// S3 provides S3 operations with validation and pre-signed URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Upload validates the content against the category limits and streams it to S3.
// Returns the stable object URL.
func (s *S3) Upload(ctx context.Context, cat Category, key, contentType, filename string, body io.Reader, size int64) (string, error) {
	if err := ValidateUpload(cat, contentType, filename, size); err != nil {
		return "", err
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.UploadsBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.UploadsBucket, s.cfg.Region, key)
	s.logger.Debug("uploaded object", zap.String("key", key), zap.Int64("size", size))
	return url, nil
}

// PresignDownload returns a time-limited download URL for an object key.
func (s *S3) PresignDownload(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	expire := time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.UploadsBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return req.URL, nil
}
