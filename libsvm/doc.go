// Package libsvm reads extreme multi-label datasets in the sparse text format
// used by the extreme classification repository:
//
//	<n_rows> <n_cols> <n_labels>
//	<label>[,<label>...] <col>:<val> [<col>:<val> ...]
//
// The decoder streams the input line by line into growable numeric buffers
// and produces a feature matrix X (n_rows x n_cols) and a binary label
// matrix Y (n_rows x n_labels). Lines without labels or without features are
// skipped, so the resulting row count may be lower than the header declares.
package libsvm
