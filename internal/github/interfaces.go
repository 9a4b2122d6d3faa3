package github

import (
	"context"

	"github.com/ghget/gh-downloader/internal/model"
)

// ContentFetcher defines the interface for retrieving repository content.
// The download service depends on this interface; tests substitute an
// in-memory fake.
type ContentFetcher interface {
	// ListDirectory lists the immediate entries of a directory, in API order
	ListDirectory(ctx context.Context, address *model.RepoAddress, path string) ([]model.TreeEntry, error)

	// FetchEntry returns metadata for the single file the address points at
	FetchEntry(ctx context.Context, address *model.RepoAddress) (*model.TreeEntry, error)

	// FetchFileBytes returns the raw bytes of one file entry
	FetchFileBytes(ctx context.Context, address *model.RepoAddress, entry *model.TreeEntry) ([]byte, error)
}
