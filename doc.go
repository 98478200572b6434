// Package xmcdata turns extreme multi-label classification datasets stored in
// the sparse text format into cached, filtered CSR matrix pairs and feeds them
// to training loops as batches.
//
// # Quick Start
//
//	ctx := context.Background()
//	data, err := xmcdata.Load(ctx, "./data/eurlex", "train",
//	    xmcdata.WithMinWords(2),
//	    xmcdata.WithMinLabels(2),
//	)
//
// The first call parses ./data/eurlex/train.txt, trims rare features and
// labels, drops rows left without features or labels and caches the result
// next to the source. Later calls load the cache. WithForce rebuilds it.
//
// Masks learned on a training split can be applied to another split:
//
//	test, err := xmcdata.Load(ctx, dir, "test",
//	    xmcdata.WithMasks(data.FeatureMask, data.LabelMask),
//	)
//
// # Batches
//
//	ds, _ := dataset.New(data.X, data.Y, dataset.WithSorted())
//	pre, _ := preprocess.New(data.Y.Cols(), preprocess.DefaultConfig())
//	l := loader.New(ds, sampler.LocallySequential(ds.Len(), 4096, 1), pre,
//	    loader.WithBatchSize(256),
//	    loader.WithWorkers(4),
//	)
//	for batch, err := range l.Epoch(ctx) {
//	    ...
//	}
//
// # Cache Layout
//
// A split produces X_{split}.xmc and Y_{split}.xmc (see package persistence),
// masks_{split}.roar with the feature and label masks (see package trim) and
// manifest_{split}.json (see package manifest). Caches may live in any
// blobstore.BlobStore, including S3 and MinIO.
package xmcdata
