package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appcfg "github.com/perfectdish/core/internal/config"
	"github.com/perfectdish/core/internal/models"
)

// S3Store keeps blobs in an S3-compatible bucket. Selected by
// storage.driver: s3.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, bucket string, opts appcfg.S3Options) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: bucket}, nil
}

func (s *S3Store) Store(ctx context.Context, content io.Reader, originalFilename, contentType string) (Blob, error) {
	payload, err := io.ReadAll(content)
	if err != nil {
		return Blob{}, fmt.Errorf("read upload: %w", err)
	}

	filename := NewFilename(originalFilename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Blob{}, fmt.Errorf("s3 put %q: %w", filename, err)
	}
	return Blob{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(payload)),
		UploadedAt:  time.Now(),
	}, nil
}

func (s *S3Store) Open(ctx context.Context, filename string) (io.ReadCloser, Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, Blob{}, models.ErrBlobNotFound
		}
		return nil, Blob{}, fmt.Errorf("s3 get %q: %w", filename, err)
	}

	b := Blob{Filename: filename, ContentType: aws.ToString(out.ContentType)}
	if out.ContentLength != nil {
		b.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		b.UploadedAt = *out.LastModified
	}
	return out.Body, b, nil
}

func (s *S3Store) ListAll(ctx context.Context) ([]Blob, error) {
	blobs := []Blob{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			b := Blob{Filename: aws.ToString(obj.Key)}
			if obj.Size != nil {
				b.Size = *obj.Size
			}
			if obj.LastModified != nil {
				b.UploadedAt = *obj.LastModified
			}
			blobs = append(blobs, b)
		}
	}
	return blobs, nil
}
