// Package fs provides a small filesystem abstraction used by cache writers,
// together with WriteAtomic (temp file plus rename) and FaultyFS for fault
// injection in tests.
//
// Production code uses fs.Default:
//
//	err := fs.WriteAtomic(fs.Default, path, func(w io.Writer) error {
//	    _, err := w.Write(payload)
//	    return err
//	})
//
// Tests wrap it to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("X_train", fs.Fault{FailAfterBytes: 16})
package fs
