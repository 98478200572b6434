// Package loader produces training batches in parallel.
//
// A coordinator computes the sampler's epoch schedule once and cuts it into
// batches. Workers collate disjoint batches against the shared read-only
// dataset and the consumer receives them in schedule order. Every batch draws
// from its own random source derived from the seed, the epoch and the batch
// number, so the output does not depend on the number of workers.
//
//	l := loader.New(ds, smp, pre, loader.WithBatchSize(256), loader.WithWorkers(8))
//	for batch, err := range l.Epoch(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    train(batch)
//	}
//
// Leaving the loop early cancels outstanding work. No goroutine outlives
// Epoch's iterator.
package loader
