// Package s3 stores cache archives in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("xmc/eurlex"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	data, err := xmcdata.Load(ctx, dir, "train", xmcdata.WithStore(store))
//
// Reads use ranged GETs; Create streams through the multipart upload manager.
package s3
