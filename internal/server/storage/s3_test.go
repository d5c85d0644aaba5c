package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignGetObject = origGet
	})
}

var testOpts = Options{
	Region:       "us-east-1",
	AccessKey:    "minioadmin",
	SecretKey:    "minioadmin",
	Bucket:       "profiles",
	BaseEndpoint: "http://127.0.0.1:9000",
}

func TestPresignGet_WiresConfig(t *testing.T) {
	restoreSeams(t)

	loads := 0
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		loads++
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var baseEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		baseEndpoint = aws.ToString(o.BaseEndpoint)
		assert.True(t, o.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://minio/" + *in.Bucket + "/" + *in.Key + "?sig"}, nil
	}

	s := NewS3(testOpts)
	url, err := s.PresignGet(context.Background(), "users/u-1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio/profiles/users/u-1.png?sig", url)

	_, err = s.PresignGet(context.Background(), "users/u-2.png")
	require.NoError(t, err)
	assert.Equal(t, 1, loads, "client is built once")
	assert.Equal(t, "http://127.0.0.1:9000", baseEndpoint)
}

func TestPresignGet_ConfigError(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3(testOpts).PresignGet(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "load aws config: no creds"))
}

func TestPresignGet_PresignError(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}

	_, err := NewS3(testOpts).PresignGet(context.Background(), "k")
	require.ErrorContains(t, err, "presign get k: sign failed")
}

func TestPresignGet_RealSigner(t *testing.T) {
	restoreSeams(t)

	url, err := NewS3(testOpts).PresignGet(context.Background(), "users/u-1.png")
	require.NoError(t, err)
	assert.Contains(t, url, "http://127.0.0.1:9000/profiles/users/u-1.png")
	assert.Contains(t, url, "X-Amz-Signature=")
}
