package model

// EntryKind is the type of one row returned by the contents-listing
// endpoint. The wire values match GitHub's "type" field.
type EntryKind string

const (
	EntryKindFile      EntryKind = "file"
	EntryKindDirectory EntryKind = "dir"
	EntryKindSymlink   EntryKind = "symlink"
	EntryKindSubmodule EntryKind = "submodule"
)

// TreeEntry is one row of a directory listing (or the metadata of a single
// file). Values are transient: they exist only within one fetch call.
type TreeEntry struct {
	Name string
	Path string
	SHA  string
	Size int64
	Kind EntryKind

	// DownloadURL is empty exactly when the file is too large for the
	// contents endpoint; bytes must then be fetched through the blob
	// endpoint keyed by SHA.
	DownloadURL string
}

// NeedsBlobFetch returns true when the file bytes cannot be retrieved
// through a direct raw request.
func (e *TreeEntry) NeedsBlobFetch() bool {
	return e.DownloadURL == ""
}
