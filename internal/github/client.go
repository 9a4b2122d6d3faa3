package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghget/gh-downloader/internal/model"
)

// API constants
const (
	DefaultBaseURL = "https://api.github.com"

	AcceptHeader    = "Accept"
	AcceptJSON      = "application/vnd.github+json"
	UserAgentHeader = "User-Agent"
	UserAgent       = "gh-downloader"

	EncodingBase64 = "base64"
)

// Client talks to the GitHub REST API: the contents-listing endpoint for
// directory enumeration and file metadata, raw download URLs for small
// file bytes, and the blob endpoint for files too large for the contents
// endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against the public GitHub API.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL, http.DefaultClient)
}

// NewClientWithBaseURL creates a client against a custom API base URL.
// Tests use it to point the client at a local httptest server.
func NewClientWithBaseURL(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// contentItem is the wire format of one contents-endpoint row.
type contentItem struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	SHA         string  `json:"sha"`
	Size        int64   `json:"size"`
	Type        string  `json:"type"`
	DownloadURL *string `json:"download_url"`
}

// blobResponse is the wire format of the git blob endpoint.
type blobResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ListDirectory returns the ordered immediate entries of a directory in
// the addressed repository. path is relative to the repository root; pass
// address.Path for the subtree root itself.
//
// A 404 surfaces as ErrNotFound; the tree walker treats that as an empty
// directory, any other failure is fatal for the job.
func (c *Client) ListDirectory(ctx context.Context, address *model.RepoAddress, path string) ([]model.TreeEntry, error) {
	body, err := c.get(ctx, c.contentsURL(address, path), AcceptJSON)
	if err != nil {
		return nil, err
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode directory listing for %q: %w", path, err)
	}

	entries := make([]model.TreeEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.toEntry())
	}
	return entries, nil
}

// FetchEntry returns the metadata of the single file the address points
// at. Used for blob-style URLs where no directory listing happens.
func (c *Client) FetchEntry(ctx context.Context, address *model.RepoAddress) (*model.TreeEntry, error) {
	body, err := c.get(ctx, c.contentsURL(address, address.Path), AcceptJSON)
	if err != nil {
		return nil, err
	}

	var item contentItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to decode file metadata for %q: %w", address.Path, err)
	}

	entry := item.toEntry()
	return &entry, nil
}

// FetchFileBytes retrieves the raw bytes of one file entry. Small files
// come straight from their download URL; files whose metadata carries no
// download URL exceed the contents-endpoint size threshold and are fetched
// through the blob endpoint keyed by content hash, then base64-decoded.
func (c *Client) FetchFileBytes(ctx context.Context, address *model.RepoAddress, entry *model.TreeEntry) ([]byte, error) {
	if entry.NeedsBlobFetch() {
		return c.fetchBlob(ctx, address, entry.SHA)
	}

	return c.get(ctx, entry.DownloadURL, "")
}

// fetchBlob retrieves file bytes through the content-addressed blob
// endpoint. base64 is the only encoding GitHub documents for blobs; any
// other value fails this file without failing the job.
func (c *Client) fetchBlob(ctx context.Context, address *model.RepoAddress, sha string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s",
		c.baseURL, url.PathEscape(address.Owner), url.PathEscape(address.Repo), url.PathEscape(sha))

	body, err := c.get(ctx, endpoint, AcceptJSON)
	if err != nil {
		return nil, err
	}

	var blob blobResponse
	if err := json.Unmarshal(body, &blob); err != nil {
		return nil, fmt.Errorf("failed to decode blob %s: %w", sha, err)
	}

	if blob.Encoding != EncodingBase64 {
		return nil, fmt.Errorf("%w: blob %s has encoding %q", ErrUnsupportedEncoding, sha, blob.Encoding)
	}

	// GitHub wraps blob content in newlines
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(blob.Content)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content of blob %s: %w", sha, err)
	}

	return data, nil
}

// contentsURL builds the contents-endpoint URL for a path inside the
// addressed repository.
func (c *Client) contentsURL(address *model.RepoAddress, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL,
		url.PathEscape(address.Owner),
		url.PathEscape(address.Repo),
		escapePath(path),
		url.QueryEscape(address.Branch))
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// get performs one GET request and returns the response body, translating
// non-2xx statuses into *APIError.
func (c *Client) get(ctx context.Context, requestURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", requestURL, err)
	}

	if accept != "" {
		req.Header.Set(AcceptHeader, accept)
	}
	req.Header.Set(UserAgentHeader, UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", requestURL, err)
	}

	return body, nil
}

// toEntry converts a wire row into the domain entry.
func (ci *contentItem) toEntry() model.TreeEntry {
	entry := model.TreeEntry{
		Name: ci.Name,
		Path: ci.Path,
		SHA:  ci.SHA,
		Size: ci.Size,
		Kind: model.EntryKind(ci.Type),
	}
	if ci.DownloadURL != nil {
		entry.DownloadURL = *ci.DownloadURL
	}
	return entry
}
