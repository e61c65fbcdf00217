package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	commonConfig "github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/logger"
)

func extensionFromMimeType(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return ".jpg"
	case strings.Contains(mimeType, "png"):
		return ".png"
	case strings.Contains(mimeType, "gif"):
		return ".gif"
	case strings.Contains(mimeType, "webp"):
		return ".webp"
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	default:
		return ".bin"
	}
}

// Enabled reports whether media offload to R2 is configured.
func Enabled() bool {
	return commonConfig.R2AccessKey != "" && commonConfig.R2SecretKey != "" &&
		commonConfig.R2BucketName != "" && commonConfig.R2Endpoint != ""
}

// UploadMedia uploads base64 media returned inline by a provider and returns a
// public URL for it.
func UploadMedia(ctx context.Context, base64Data string, mimeType string) (string, error) {
	if !Enabled() {
		return "", fmt.Errorf("R2 configuration is incomplete")
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %v", err)
	}

	filename := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102-150405"),
		strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
		extensionFromMimeType(mimeType))
	objectKey := path.Join("director-media", filename)

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			commonConfig.R2AccessKey, commonConfig.R2SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: commonConfig.R2Endpoint}, nil
			}),
		),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create AWS config: %v", err)
	}

	// Path-style avoids TLS issues with virtual-host bucket subdomains on R2.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(commonConfig.R2BucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %v", err)
	}

	var resultUrl string
	if commonConfig.R2PublicBaseURL != "" {
		resultUrl = fmt.Sprintf("%s/%s", strings.TrimSuffix(commonConfig.R2PublicBaseURL, "/"), objectKey)
	} else {
		resultUrl = fmt.Sprintf("%s/%s/%s", commonConfig.R2Endpoint, commonConfig.R2BucketName, objectKey)
	}
	logger.SysLog(fmt.Sprintf("media uploaded to R2: %s (size: %d bytes)", resultUrl, len(data)))
	return resultUrl, nil
}
