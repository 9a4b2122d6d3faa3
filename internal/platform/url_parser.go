package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghget/gh-downloader/internal/model"
)

// ErrInvalidURL is returned for input that cannot be resolved to an
// owner/repo address. Callers match it with errors.Is.
var ErrInvalidURL = errors.New("invalid GitHub URL")

// URL structure constants
const (
	HostMarker = "github.com/"

	TreeSegment = "tree"
	BlobSegment = "blob"

	// MinSegments is the smallest segment count after the host marker
	// that still identifies a repository (owner and repo).
	MinSegments = 2

	// RefSegments is the segment count at which a tree/blob reference
	// carries an explicit branch (owner, repo, tree|blob, branch).
	RefSegments = 4
)

// ParseRepoURL parses a GitHub web URL into a repository address.
//
// Supported forms:
//
//	https://github.com/{owner}/{repo}
//	https://github.com/{owner}/{repo}/tree/{branch}[/{path...}]
//	https://github.com/{owner}/{repo}/blob/{branch}/{path...}
//
// A URL without an explicit branch resolves to branch "main", empty path
// and directory kind. Malformed input yields ErrInvalidURL, never a
// partially filled address.
func ParseRepoURL(raw string) (*model.RepoAddress, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	// Tolerate one trailing separator from copy-pasted browser URLs
	trimmed = strings.TrimSuffix(trimmed, "/")

	idx := strings.Index(trimmed, HostMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing %q in %q", ErrInvalidURL, HostMarker, raw)
	}

	segments := strings.Split(trimmed[idx+len(HostMarker):], "/")
	if len(segments) < MinSegments || segments[0] == "" || segments[1] == "" {
		return nil, fmt.Errorf("%w: expected owner/repo after %q", ErrInvalidURL, HostMarker)
	}

	address := &model.RepoAddress{
		Owner:  segments[0],
		Repo:   segments[1],
		Branch: model.DefaultBranch,
		Kind:   model.AddressKindDirectory,
	}

	if len(segments) >= RefSegments {
		switch segments[2] {
		case TreeSegment:
			address.Branch = segments[3]
			address.Path = strings.Join(segments[RefSegments:], "/")
		case BlobSegment:
			address.Branch = segments[3]
			address.Path = strings.Join(segments[RefSegments:], "/")
			address.Kind = model.AddressKindFile
		}
	}

	return address, nil
}
