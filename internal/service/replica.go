package service

import (
	"bitwise74/usercontent-api/internal/storage"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// S3 can delete at most 1000 objects in one batch request
const maxDeleteBatch = 1000

// ObjectAPI is the part of *s3.Client the replica needs
type ObjectAPI interface {
	manager.UploadAPIClient
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Replica mirrors blobs into an S3 compatible bucket. The local upload root stays the
// source of truth, the bucket is a best effort copy kept up to date in the background
type Replica struct {
	client ObjectAPI
	bucket string
	blobs  *storage.Local
	queue  *TaskQueue
}

func NewReplica(c ObjectAPI, bucket string, blobs *storage.Local, q *TaskQueue) *Replica {
	return &Replica{
		client: c,
		bucket: bucket,
		blobs:  blobs,
		queue:  q,
	}
}

// Put schedules a copy of the blob at p. Safe to call on a nil replica
func (r *Replica) Put(p string) {
	if r == nil {
		return
	}

	key, err := r.blobs.Name(p)
	if err != nil {
		zap.L().Error("Refusing to replicate blob outside of upload root", zap.String("path", p))
		return
	}

	r.enqueue(&Task{
		Name: "replica_put",
		Run: func(ctx context.Context) error {
			return r.put(ctx, p, key)
		},
	})
}

// Delete schedules the removal of the replicas of every blob in paths
func (r *Replica) Delete(paths ...string) {
	if r == nil || len(paths) == 0 {
		return
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key, err := r.blobs.Name(p)
		if err != nil {
			continue
		}

		keys = append(keys, key)
	}

	r.enqueue(&Task{
		Name: "replica_delete",
		Run: func(ctx context.Context) error {
			return r.delete(ctx, keys)
		},
	})
}

func (r *Replica) enqueue(t *Task) {
	if err := r.queue.Enqueue(t); err != nil {
		zap.L().Warn("Dropped replica task", zap.String("task", t.Name), zap.Error(err))
	}
}

func (r *Replica) put(ctx context.Context, p, key string) error {
	f, err := r.blobs.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open blob, %w", err)
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("failed to detect content type, %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind blob, %w", err)
	}

	uploader := manager.NewUploader(r.client)

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(mime.String()),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload replica, %w", err)
	}

	zap.L().Debug("Blob replicated", zap.String("key", key), zap.String("mime", mime.String()))
	return nil
}

func (r *Replica) delete(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		objects := make([]types.ObjectIdentifier, end-start)
		for i, key := range keys[start:end] {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		resp, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(r.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete replicas, %w", err)
		}

		for _, e := range resp.Errors {
			zap.L().Warn("Failed to delete replica", zap.String("key", aws.ToString(e.Key)), zap.String("message", aws.ToString(e.Message)))
		}
	}

	return nil
}
