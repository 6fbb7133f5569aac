package config

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
)

// ObjectGetter is the part of *s3.Client used to read route tables.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client creates a client for cfg. Credentials come from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables;
// without them requests are sent unsigned, which works for public buckets.
func NewS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := s3.Options{
		Region:       region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials:  envCredentials(),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	creds := aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	})
}

// LoadRoutesS3 reads a route table object. The key's extension selects the
// format.
func LoadRoutesS3(ctx context.Context, client ObjectGetter, bucket, key string) (router.Routes, error) {
	source := "s3://" + bucket + "/" + key

	format, err := FormatOf(key)
	if err != nil {
		return router.Routes{}, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return router.Routes{}, errors.New(errors.CodeSourceUnreadable).
			WithDetail(source).
			Wrap(err)
	}
	defer out.Body.Close()

	routes, err := DecodeRoutes(out.Body, format)
	if err != nil {
		return router.Routes{}, withSource(err, source)
	}
	return routes, nil
}

// LoadRoutes reads the configured route table, from S3 when a bucket is set
// and from the Routes file otherwise.
func (c *Config) LoadRoutes(ctx context.Context) (router.Routes, error) {
	if c.S3.Enabled() {
		return LoadRoutesS3(ctx, NewS3Client(c.S3), c.S3.Bucket, c.S3.Key)
	}
	return LoadRoutesFile(c.RoutesPath())
}
