package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tuvarna/devicebackend/internal/common"
	sc "github.com/tuvarna/devicebackend/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// AttachmentService issues presigned S3 URLs for invoice scans attached to
// registered devices. The server never proxies the file bytes.
type AttachmentService struct {
	config  *sc.Config
	devices deviceChecker
}

// NewAttachmentService constructs an AttachmentService using server config
// and the device existence check.
func NewAttachmentService(cfg *sc.Config, devices deviceChecker) *AttachmentService {
	return &AttachmentService{
		config:  cfg,
		devices: devices,
	}
}

// invoiceStorageKey namespaces invoice objects per device so download keys
// can be validated against the serial number they were issued for.
func invoiceStorageKey(serialNumber string) string {
	return fmt.Sprintf("invoices/%s/%v", serialNumber, uuid.New())
}

func (s *AttachmentService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetInvoiceUploadURL returns a fresh storage key and a presigned PUT URL for
// uploading an invoice scan of a registered device.
func (s *AttachmentService) GetInvoiceUploadURL(ctx context.Context, serialNumber string) (string, string, error) {
	if _, err := s.devices.IsDeviceExists(ctx, serialNumber); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := invoiceStorageKey(serialNumber)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetInvoiceDownloadURL returns a presigned GET URL for a previously uploaded
// invoice scan. The key must belong to the device's namespace.
func (s *AttachmentService) GetInvoiceDownloadURL(ctx context.Context, serialNumber string, key string) (string, error) {
	if _, err := s.devices.IsDeviceExists(ctx, serialNumber); err != nil {
		return "", err
	}

	if !strings.HasPrefix(key, "invoices/"+serialNumber+"/") {
		return "", common.NewError(common.ErrNotFound, "Invoice not found")
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
