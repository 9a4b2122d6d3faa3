package download

// Package download implements the core pipeline from a pasted GitHub URL
// to a saved ZIP archive: URL parsing, sequential depth-first tree
// traversal through the contents API, per-file byte retrieval with
// placeholder substitution on localized failures, archive assembly, and
// progress propagation to the UI. It manages task lifecycle and bounds the
// number of concurrently running jobs.
