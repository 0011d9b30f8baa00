package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"

	// Register blob drivers for URL opening
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// BlobStore is a durable Store backed by a gocloud.dev/blob bucket. Keys are
// scoped to a namespace prefix inside the bucket. The fileblob driver writes
// through a temporary file and renames it into place, so partial writes are
// never visible. Because of that rename, Shred overwrites file buckets through
// the object file itself; other buckets can only be shredded by rewriting the
// object.
type BlobStore struct {
	name   string
	kind   storageDomain.Kind
	bucket *blob.Bucket
	root   string // object directory of a file bucket, empty otherwise
	logger *slog.Logger
}

// OpenBlobStore opens the bucket at bucketURL (e.g., file:///var/lib/data?create_dir=true
// or mem://) and scopes it to namespace.
func OpenBlobStore(
	ctx context.Context,
	name, bucketURL, namespace string,
	logger *slog.Logger,
) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket: %w", err)
	}
	store := NewBlobStore(name, bucket, namespace, logger)
	if u, err := url.Parse(bucketURL); err == nil && u.Scheme == "file" {
		store.root = filepath.Join(filepath.FromSlash(u.Path), filepath.FromSlash(namespace))
	}
	return store, nil
}

// NewBlobStore wraps an already opened bucket. The store takes ownership of
// the bucket and closes it on Close.
func NewBlobStore(name string, bucket *blob.Bucket, namespace string, logger *slog.Logger) *BlobStore {
	if namespace != "" {
		bucket = blob.PrefixedBucket(bucket, namespace+"/")
	}
	return &BlobStore{
		name:   name,
		kind:   storageDomain.KindPersistent,
		bucket: bucket,
		logger: logger,
	}
}

// Name returns the provider name.
func (b *BlobStore) Name() string {
	return b.name
}

// Kind returns KindPersistent.
func (b *BlobStore) Kind() storageDomain.Kind {
	return b.kind
}

// IsAvailable checks that the bucket is reachable.
func (b *BlobStore) IsAvailable(ctx context.Context) bool {
	ok, err := b.bucket.IsAccessible(ctx)
	if err != nil {
		b.logFailure("probe", "", err)
		return false
	}
	return ok
}

// Write uploads data under key, replacing any existing object.
func (b *BlobStore) Write(ctx context.Context, key string, data []byte) bool {
	if err := b.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		b.logFailure("write", key, err)
		return false
	}
	return true
}

// Read downloads the object stored under key.
func (b *BlobStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	data, err := b.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, storageDomain.OutcomeAbsent
		}
		b.logFailure("read", key, err)
		return nil, storageDomain.OutcomeUnavailable
	}
	return data, storageDomain.OutcomeFound
}

// Delete removes the object. A missing object counts as deleted.
func (b *BlobStore) Delete(ctx context.Context, key string) bool {
	if err := b.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return true
		}
		b.logFailure("delete", key, err)
		return false
	}
	return true
}

// Shred overwrites the object file of a file bucket in place once per pass,
// syncing after each, and then deletes it. Other buckets fall back to
// rewriting the object through Write.
func (b *BlobStore) Shred(ctx context.Context, key string, passes []storageDomain.WipePass) bool {
	if b.root == "" {
		return storageDomain.ShredByWrite(ctx, b, key, passes)
	}

	f, err := os.OpenFile(filepath.Join(b.root, filepath.FromSlash(key)), os.O_WRONLY, 0)
	if err != nil {
		if !os.IsNotExist(err) {
			b.logFailure("shred", key, err)
			return false
		}
		// fileblob escapes some keys on disk; those are rewritten instead.
		exists, err := b.bucket.Exists(ctx, key)
		if err != nil {
			b.logFailure("shred", key, err)
			return false
		}
		if !exists {
			return true
		}
		return storageDomain.ShredByWrite(ctx, b, key, passes)
	}

	if err := overwriteFile(f, passes); err != nil {
		_ = f.Close()
		b.logFailure("shred", key, err)
		return false
	}
	if err := f.Close(); err != nil {
		b.logFailure("shred", key, err)
		return false
	}
	return b.Delete(ctx, key)
}

func overwriteFile(f *os.File, passes []storageDomain.WipePass) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := int(info.Size())
	if size == 0 {
		return nil
	}
	for _, pass := range passes {
		if _, err := f.WriteAt(pass.Pattern(size), 0); err != nil {
			return fmt.Errorf("%s pass: %w", pass, err)
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("%s pass: %w", pass, err)
		}
	}
	return nil
}

// List enumerates every object key in the namespace.
func (b *BlobStore) List(ctx context.Context) ([]string, bool) {
	var keys []string
	iter := b.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			b.logFailure("list", "", err)
			return nil, false
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, true
}

// Close releases the bucket.
func (b *BlobStore) Close() error {
	return b.bucket.Close()
}

func (b *BlobStore) logFailure(op, key string, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Warn("blob store operation failed",
		slog.String("store", b.name),
		slog.String("operation", op),
		slog.String("key", key),
		slog.Any("error", err),
	)
}
