package cloudflare

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"rentdesk_backend/pkg/config"
)

// R2Storage stores objects in a Cloudflare R2 bucket through the S3 API.
type R2Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewR2Storage(ctx context.Context, cfg config.StorageConfig) (*R2Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return &R2Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload dosyayı bucket'a yükler ve public URL döner
func (r *R2Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload file to R2: %v", err)
	}
	return r.publicURL + "/" + key, nil
}

func (r *R2Storage) Delete(ctx context.Context, fullURL string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.ObjectKey(fullURL)),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %v", err)
	}
	return nil
}

// ObjectKey strips the public URL prefix.
func (r *R2Storage) ObjectKey(fullURL string) string {
	return strings.TrimPrefix(fullURL, r.publicURL+"/")
}

// PropertyPhotoKey properties/<slug>/photos/<unixnano>-<uuid><ext>
func PropertyPhotoKey(propertyName, ext string) string {
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String(), ext)
	return path.Join("properties", slug.Make(propertyName), "photos", name)
}

// ImportArchiveKey imports/<entity>/<yyyy-mm-dd>/<uuid><ext>
func ImportArchiveKey(entity, ext string, at time.Time) string {
	return path.Join("imports", slug.Make(entity), at.Format("2006-01-02"), uuid.New().String()+ext)
}
