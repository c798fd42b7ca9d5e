// services/archive.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

// SpacesArchiveService ships retired pool snapshots to a Spaces/S3 bucket
// when an operator replaces a campaign's codes. Snapshots are the audit
// trail for "who held which code under which version" after the live
// document has moved on.
type SpacesArchiveService struct {
	client  *s3.Client
	bucket  string
	region  string
	KeyRoot string
}

func NewSpacesArchiveService(spacesKey, spacesSecret, region, bucket, keyRoot string) (*SpacesArchiveService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &SpacesArchiveService{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		KeyRoot: strings.TrimPrefix(keyRoot, "/"),
	}, nil
}

// ArchivePool uploads the retired pool as JSON under
// <root>/<campaign>/v<version>-<timestamp>.json.
func (s *SpacesArchiveService) ArchivePool(ctx context.Context, retired *pool.CodePool) error {
	body, err := json.MarshalIndent(retired, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pool snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%s/v%d-%s.json",
		s.KeyRoot,
		retired.CampaignID,
		retired.Version,
		time.Now().UTC().Format("20060102T150405Z"))

	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload pool snapshot %s: %w", key, err)
	}
	return nil
}
