// Package blobstore abstracts where cache archives live.
//
// BlobStore reads and writes immutable, named blobs. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a local directory with mmap reads and atomic writes
//   - MemoryStore: in-memory, for tests
//   - MirrorStore: a local copy in front of a remote store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs that can expose their content without copying implement Mappable;
// remote blobs implement RangeReader so that ReadAll needs one request.
package blobstore
