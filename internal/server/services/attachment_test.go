package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuvarna/devicebackend/internal/common"
	sc "github.com/tuvarna/devicebackend/internal/server/config"
	"github.com/tuvarna/devicebackend/internal/server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func s3Config() *sc.Config {
	return &sc.Config{
		S3RootUser:     "admin",
		S3RootPassword: "secretpassword",
		S3Bucket:       "invoices",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

func registeredDeviceChecker() *fakeDeviceChecker {
	return &fakeDeviceChecker{
		isDeviceExists: func(ctx context.Context, serialNumber string) (*models.Device, error) {
			return &models.Device{SerialNumber: serialNumber}, nil
		},
	}
}

func stubPresign(t *testing.T, putURL, getURL string) {
	t.Helper()

	origPut := presignPutObject
	origGet := presignGetObject
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: putURL}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: getURL}, nil
	}
	t.Cleanup(func() {
		presignPutObject = origPut
		presignGetObject = origGet
	})
}

func TestAttachmentService_GetInvoiceUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a namespaced key and a put url", func(t *testing.T) {
		stubPresign(t, "http://presigned/put", "http://presigned/get")

		svc := NewAttachmentService(s3Config(), registeredDeviceChecker())

		key, url, err := svc.GetInvoiceUploadURL(ctx, "SN-150")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "invoices/SN-150/"), "key %q must be namespaced per device", key)
		assert.Equal(t, "http://presigned/put", url)
	})

	t.Run("unregistered device answer passes through", func(t *testing.T) {
		checker := &fakeDeviceChecker{
			isDeviceExists: func(ctx context.Context, serialNumber string) (*models.Device, error) {
				return nil, common.NewError(common.ErrNotRegistered, "Device not registered")
			},
		}
		svc := NewAttachmentService(s3Config(), checker)

		_, _, err := svc.GetInvoiceUploadURL(ctx, "SN-150")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotRegistered)
	})

	t.Run("presign failure propagates", func(t *testing.T) {
		stubPresign(t, "", "")
		orig := presignPutObject
		presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("presign failed")
		}
		t.Cleanup(func() { presignPutObject = orig })

		svc := NewAttachmentService(s3Config(), registeredDeviceChecker())

		_, _, err := svc.GetInvoiceUploadURL(ctx, "SN-150")
		require.Error(t, err)
	})
}

func TestAttachmentService_GetInvoiceDownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a get url for a key in the device namespace", func(t *testing.T) {
		stubPresign(t, "http://presigned/put", "http://presigned/get")

		svc := NewAttachmentService(s3Config(), registeredDeviceChecker())

		url, err := svc.GetInvoiceDownloadURL(ctx, "SN-150", "invoices/SN-150/abc")
		require.NoError(t, err)
		assert.Equal(t, "http://presigned/get", url)
	})

	t.Run("rejects keys outside the device namespace", func(t *testing.T) {
		svc := NewAttachmentService(s3Config(), registeredDeviceChecker())

		_, err := svc.GetInvoiceDownloadURL(ctx, "SN-150", "invoices/SN-999/abc")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.EqualError(t, err, "Invoice not found")
	})
}

func TestAttachmentService_PresignClientConfigError(t *testing.T) {
	ctx := context.Background()

	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("config load failed")
	}
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	svc := NewAttachmentService(s3Config(), registeredDeviceChecker())

	_, _, err := svc.GetInvoiceUploadURL(ctx, "SN-150")
	require.Error(t, err)
}
