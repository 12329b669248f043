package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket, keyed by file name.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore opens the named GridFS bucket in db.
func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open GridFS bucket %s: %w", bucketName, err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

type gridFSFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Metadata bson.M             `bson:"metadata"`
}

// Put uploads data under key. An existing file with the same name is replaced.
func (s *GridFSStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("failed to upload %s to GridFS: %w", key, err)
	}
	files, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	// Keep only the newest revision.
	for i := 0; i < len(files)-1; i++ {
		if err := s.bucket.Delete(files[i].ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

func (s *GridFSStore) Get(ctx context.Context, key string) (*Object, error) {
	files, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}
	latest := files[len(files)-1]
	stream, err := s.bucket.OpenDownloadStream(latest.ID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	contentType, _ := latest.Metadata["contentType"].(string)
	return &Object{ReadCloser: stream, ContentType: contentType, Size: latest.Length}, nil
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	files, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNotFound
	}
	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

// find returns every revision stored under key, oldest first.
func (s *GridFSStore) find(ctx context.Context, key string) ([]gridFSFile, error) {
	cursor, err := s.bucket.Find(bson.M{"filename": key},
		options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []gridFSFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}
