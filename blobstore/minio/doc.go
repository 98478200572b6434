// Package minio stores cache archives in MinIO or any other S3-compatible
// service (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	client, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minio.NewStore(client, "datasets", "eurlex/")
//
// Reads use ranged GETs; Create streams an upload of unknown size.
package minio
