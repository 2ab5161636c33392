package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/perfectdish/core/internal/models"
)

// GridFSStore keeps blobs in a Mongo GridFS bucket next to the primary
// document store.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %q: %w", bucketName, err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

type gridFSFileDoc struct {
	Filename   string         `bson:"filename"`
	Length     int64          `bson:"length"`
	UploadDate time.Time      `bson:"uploadDate"`
	Metadata   gridFSMetadata `bson:"metadata"`
}

type gridFSMetadata struct {
	ContentType string `bson:"content_type"`
}

func (s *GridFSStore) Store(ctx context.Context, content io.Reader, originalFilename, contentType string) (Blob, error) {
	filename := NewFilename(originalFilename)
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})

	_ = s.bucket.SetWriteDeadline(deadlineFrom(ctx))
	size, err := s.uploadStream(filename, content, opts)
	if err != nil {
		return Blob{}, fmt.Errorf("gridfs upload: %w", err)
	}
	return Blob{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now(),
	}, nil
}

func (s *GridFSStore) uploadStream(filename string, content io.Reader, opts *options.UploadOptions) (int64, error) {
	us, err := s.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(us, content)
	if err != nil {
		_ = us.Close()
		return 0, err
	}
	return size, us.Close()
}

func (s *GridFSStore) Open(ctx context.Context, filename string) (io.ReadCloser, Blob, error) {
	_ = s.bucket.SetReadDeadline(deadlineFrom(ctx))
	ds, err := s.bucket.OpenDownloadStreamByName(filename)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, Blob{}, models.ErrBlobNotFound
		}
		return nil, Blob{}, fmt.Errorf("gridfs open %q: %w", filename, err)
	}

	file := ds.GetFile()
	meta := gridFSMetadata{}
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &meta)
	}
	return ds, Blob{
		Filename:    filename,
		ContentType: meta.ContentType,
		Size:        file.Length,
		UploadedAt:  file.UploadDate,
	}, nil
}

func (s *GridFSStore) ListAll(ctx context.Context) ([]Blob, error) {
	cur, err := s.bucket.Find(bson.M{})
	if err != nil {
		return nil, fmt.Errorf("gridfs list: %w", err)
	}
	defer cur.Close(ctx)

	blobs := []Blob{}
	for cur.Next(ctx) {
		var doc gridFSFileDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("gridfs decode file doc: %w", err)
		}
		blobs = append(blobs, Blob{
			Filename:    doc.Filename,
			ContentType: doc.Metadata.ContentType,
			Size:        doc.Length,
			UploadedAt:  doc.UploadDate,
		})
	}
	return blobs, cur.Err()
}

func deadlineFrom(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(45 * time.Second)
}
