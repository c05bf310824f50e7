package source

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/modelview/internal/errors"
)

// S3Scheme prefixes model locations fetched from S3.
const S3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used to fetch models.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ClientConfig configures NewS3Client.
type S3ClientConfig struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewS3Client builds an S3 client from cfg and the standard AWS_* environment
// variables. Without access keys requests are sent unsigned.
func NewS3Client(cfg S3ClientConfig) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:       region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.AnonymousCredentials{},
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		sessionToken := os.Getenv("AWS_SESSION_TOKEN")
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
					Source:          "Environment",
				}, nil
			}))
	}

	return s3.New(opts)
}

// IsS3URI reports whether location names an S3 object.
func IsS3URI(location string) bool {
	return strings.HasPrefix(location, S3Scheme)
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" {
		return "", "", errors.New(errors.CodeModelFetchFailed).
			WithDetail("Not an S3 URI: " + uri)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", errors.New(errors.CodeModelFetchFailed).
			WithDetail("S3 URI must name an object: " + uri).
			WithSuggestion("Use s3://bucket/path/to/model.onnx")
	}
	return bucket, key, nil
}

// FromS3 downloads the object named by uri into a detached, buffer-backed
// source published under the object's base name.
func FromS3(ctx context.Context, client ObjectGetter, uri string) (Source, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return Source{}, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Source{}, errors.New(errors.CodeModelFetchFailed).
			WithDetail("GetObject " + uri).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Source{}, errors.New(errors.CodeModelFetchFailed).
			WithDetail("Reading " + uri).
			Wrap(err)
	}
	if data == nil {
		data = []byte{}
	}

	return Source{Path: path.Base(key), Data: data, Detached: true}, nil
}
