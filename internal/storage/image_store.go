package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/logger"
)

// imageKeyPrefix 封面图片的对象键前缀
const imageKeyPrefix = "box_images/"

// ImageStore Box封面图片的对象存储
type ImageStore struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

// NewImageStore 创建图片存储客户端
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: cfg.Endpoint}, nil
			}),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	cdnBaseURL := cfg.CDNBaseUrl
	if cdnBaseURL == "" {
		cdnBaseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	logger.Info("Image store initialized (bucket: %s)", cfg.Bucket)
	return &ImageStore{
		client:     s3.NewFromConfig(awsCfg),
		bucket:     cfg.Bucket,
		cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/"),
	}, nil
}

// GetImage 获取Box封面图片的URL
//
// 图片不存在返回("", nil)，不算错误；其他读取失败向调用方透出。
func (s *ImageStore) GetImage(ctx context.Context, boxAddress string) (string, error) {
	key := imageKey(boxAddress)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to check image for box %s: %w", boxAddress, err)
	}

	return s.cdnBaseURL + "/" + key, nil
}

// PutImage 上传或替换Box封面图片，返回图片URL
func (s *ImageStore) PutImage(ctx context.Context, boxAddress, contentType string, body io.Reader) (string, error) {
	key := imageKey(boxAddress)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image for box %s: %w", boxAddress, err)
	}

	logger.Info("Uploaded cover image for box %s", boxAddress)
	return s.cdnBaseURL + "/" + key, nil
}

func imageKey(boxAddress string) string {
	return imageKeyPrefix + boxAddress
}
