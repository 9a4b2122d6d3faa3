package download

import (
	"github.com/ghget/gh-downloader/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	AddTask(url string) (*model.DownloadTask, error)
	GetTask(id string) (*model.DownloadTask, bool)
	GetAllTasks() []*model.DownloadTask

	// SetMaxParallelDownloads sets the maximum number of parallel download jobs
	SetMaxParallelDownloads(max int)

	// SetDownloadDirectory sets the directory produced archives are saved into
	SetDownloadDirectory(dir string)
}
