// SPDX-License-Identifier: MIT

// Package storage implements the CLI's optional upload sink: once
// `scan` or `build-trie` has written its output file to local disk, an
// `--upload-bucket` destination copies it to S3-compatible object storage
// (spec §11's ambient-stack expansion of the teacher's upload path).
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Store is the subset of minio.Client this package needs, narrowed for
// easier testing the way the teacher narrows its own S3 interface: a
// fake implementing this interface stands in for network storage in
// tests instead of a full mock of minio's (rather big) client surface.
// CopyObject/RemoveObject are part of the interface, not optional, since
// Upload's staged-then-promoted write depends on both to land the
// object at its final name.
type Store interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Destination names where an uploaded artifact lands: an S3-compatible
// bucket plus an object key prefix under which the artifact's final
// name is placed.
type Destination struct {
	Bucket string
	Prefix string
}

// Upload copies the local file at path to dest under objectName,
// staging through a uuid-suffixed temporary key first and only
// promoting it to the final name once the upload completes — mirroring
// the teacher's temp-file-then-rename idiom, adapted to S3's lack of a
// native rename by doing a copy-then-remove of the staged object.
func Upload(ctx context.Context, store Store, dest Destination, path string, objectName string, contentType string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	staged := fmt.Sprintf("%s/.upload-%s-%s", dest.Prefix, uuid.NewString(), objectName)
	final := fmt.Sprintf("%s/%s", dest.Prefix, objectName)

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := store.FPutObject(ctx, dest.Bucket, staged, path, opts); err != nil {
		return fmt.Errorf("storage: upload %s: %w", staged, err)
	}

	if _, err := store.CopyObject(ctx, minio.CopyDestOptions{Bucket: dest.Bucket, Object: final},
		minio.CopySrcOptions{Bucket: dest.Bucket, Object: staged}); err != nil {
		return fmt.Errorf("storage: promote %s: %w", staged, err)
	}
	// staged is already unreachable under its final name once CopyObject
	// above succeeds; a failed cleanup here leaves an orphaned copy but
	// isn't a failed upload, so it doesn't fail the call.
	_ = store.RemoveObject(ctx, dest.Bucket, staged, minio.RemoveObjectOptions{})
	return nil
}

// Exists reports whether objectName is already present at dest, so
// callers can skip re-uploading an artifact that was already produced
// by a previous run (spec's caching behavior, mirrored from the
// teacher's page_entities cache check).
func Exists(ctx context.Context, store Store, dest Destination, objectName string) bool {
	_, err := store.StatObject(ctx, dest.Bucket, dest.Prefix+"/"+objectName, minio.StatObjectOptions{})
	return err == nil
}
