package github

// Package github implements the content fetcher over the GitHub REST API:
// directory listings and file metadata via the contents endpoint, raw byte
// retrieval via download URLs, and the content-addressed blob endpoint for
// files above the inline-content size threshold. Failures carry a typed
// status taxonomy matched with errors.Is.
