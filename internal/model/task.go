package model

import (
	"strings"
	"time"
)

// DownloadTask represents a single repository download task
type DownloadTask struct {
	ID          string
	URL         string
	Address     *RepoAddress // set once parsing succeeded
	Status      TaskStatus
	Progress    float64 // 0.0 to 1.0
	Percent     int     // 0 to 100
	Message     string  // current progress message (path being processed)
	LastError   string  // last error message if any
	OutputPath  string  // path to the saved ZIP file
	ArchiveSize int64   // size of the produced ZIP in bytes
	FileCount   int     // files written to the archive
	FailedCount int     // files replaced with a failure placeholder
	StartedAt   time.Time
	FinishedAt  time.Time
}

// GetDisplayTitle returns "owner/repo[/path]", the saved filename, or the
// URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	// First priority: parsed address
	if dt.Address != nil {
		title := dt.Address.Owner + "/" + dt.Address.Repo
		if dt.Address.Path != "" {
			title += "/" + dt.Address.Path
		}
		return title
	}

	// Second priority: filename from OutputPath
	if dt.OutputPath != "" {
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	return dt.URL
}
