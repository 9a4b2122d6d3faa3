package archive

// Package archive builds the in-memory ZIP for one download job. Entries
// are appended in traversal order and serialized exactly once; the whole
// archive is buffered before being handed to the save step.
