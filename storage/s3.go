package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/anseljh/ttab-parser/config"
)

// NewS3Client erstellt einen S3-Client für den Archiv-Bucket.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.ArchiveS3URL,
				SigningRegion:     cfg.ArchiveS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.ArchiveS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ArchiveS3Key, cfg.ArchiveS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// ArchiveFile lädt eine heruntergeladene Rohdatei in den Archiv-Bucket hoch
// und gibt den Link zurück. Der Schlüssel ist raw/<Dateiname>, damit die
// Original-Dateien später erneut verarbeitet werden können.
func ArchiveFile(ctx context.Context, client *s3.Client, cfg *config.Config, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := "raw/" + filepath.Base(path)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &cfg.ArchiveS3Bucket,
		Key:    &key,
		Body:   file,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", cfg.ArchiveS3URL, cfg.ArchiveS3Bucket, key), nil
}

// UploadData lädt beliebige Daten in den Archiv-Bucket hoch.
func UploadData(ctx context.Context, client *s3.Client, cfg *config.Config, key string, body io.Reader) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &cfg.ArchiveS3Bucket,
		Key:    &key,
		Body:   body,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", cfg.ArchiveS3URL, cfg.ArchiveS3Bucket, key), nil
}
