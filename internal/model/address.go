package model

import "strings"

// AddressKind tells whether a parsed URL points at a single file or a
// directory subtree.
type AddressKind string

const (
	// AddressKindFile means the URL used a blob-style reference
	AddressKindFile AddressKind = "file"

	// AddressKindDirectory means the URL points at a repository root or subfolder
	AddressKindDirectory AddressKind = "dir"
)

// DefaultBranch is assumed when the URL does not name a branch explicitly.
const DefaultBranch = "main"

// RepoAddress identifies one downloadable unit on GitHub. It is created
// once by the URL parser and stays immutable for the lifetime of a job.
type RepoAddress struct {
	Owner  string
	Repo   string
	Branch string
	Path   string // "" for a repository root
	Kind   AddressKind
}

// IsRoot returns true when the address points at the repository root.
func (a *RepoAddress) IsRoot() bool {
	return a.Path == ""
}

// LastPathSegment returns the final segment of Path, or "" for a root.
func (a *RepoAddress) LastPathSegment() string {
	if a.Path == "" {
		return ""
	}
	segments := strings.Split(a.Path, "/")
	return segments[len(segments)-1]
}

// ArchiveFilename returns the suggested name for the produced ZIP:
// "{repo}.zip" for a repository root, "{repo}-{lastSegment}.zip" otherwise.
func (a *RepoAddress) ArchiveFilename() string {
	if a.IsRoot() {
		return a.Repo + ".zip"
	}
	return a.Repo + "-" + a.LastPathSegment() + ".zip"
}
