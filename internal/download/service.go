package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ghget/gh-downloader/internal/archive"
	"github.com/ghget/gh-downloader/internal/github"
	"github.com/ghget/gh-downloader/internal/model"
	"github.com/ghget/gh-downloader/internal/platform"
)

// Task ID constants
const (
	TaskIDPrefix = "download-"
)

// Placeholder written into the archive for a file whose bytes could not be
// fetched. The job continues; only this entry is affected.
const PlaceholderTemplate = "This file could not be downloaded.\n\nPath: %s\nError: %v\n"

// User-facing error messages
const (
	MsgInvalidURL   = "Invalid GitHub URL. Expected https://github.com/{owner}/{repo}[/tree|blob/{branch}/{path}]"
	MsgRateLimited  = "GitHub API rate limit exceeded. Try again later."
	MsgNotFound     = "Repository, branch, folder or file not found. Check the URL."
	MsgAuthRequired = "This repository requires authentication. Private repositories are not supported."
)

// Service handles repository download operations
type Service struct {
	tasks       map[string]*model.DownloadTask
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	downloadDir string
	fetcher     github.ContentFetcher
	onUpdate    func(*model.DownloadTask) // callback for UI updates
}

// NewService creates a new download service
func NewService(fetcher github.ContentFetcher, downloadDir string, maxParallel int) *Service {
	return &Service{
		tasks:       make(map[string]*model.DownloadTask),
		fetcher:     fetcher,
		maxParallel: maxParallel,
		downloadDir: downloadDir,
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.onUpdate = callback
}

// SetDownloadDirectory sets the directory produced archives are saved into
func (s *Service) SetDownloadDirectory(dir string) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.downloadDir = dir
}

// SetMaxParallelDownloads sets the maximum number of parallel download jobs
func (s *Service) SetMaxParallelDownloads(max int) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	if max < 1 {
		max = 1
	}
	s.maxParallel = max
}

// AddTask adds a new download task
func (s *Service) AddTask(url string) (*model.DownloadTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	// Check for duplicate URLs
	for _, task := range s.tasks {
		if task.URL == url && !task.Status.IsFinished() {
			return nil, fmt.Errorf("task already exists for URL: %s", url)
		}
	}

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Status:    model.TaskStatusPending,
		Progress:  0.0,
		Percent:   model.PhaseParseStart,
		StartedAt: time.Now(),
	}

	s.tasks[task.ID] = task

	// Try to start task if we have capacity
	if s.activeCount < s.maxParallel {
		s.activeCount++
		go s.runTask(task)
	}

	return task, nil
}

// GetTask returns a task by ID
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	return task, exists
}

// GetAllTasks returns all tasks
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// runTask executes one download job from URL parsing to the saved archive.
// Each job is strictly sequential inside: one outstanding API request at a
// time, which keeps progress monotonic and rate-limit behavior predictable.
func (s *Service) runTask(task *model.DownloadTask) {
	defer func() {
		s.tasksMutex.Lock()
		s.activeCount--
		s.tasksMutex.Unlock()

		// Try to start next pending task
		s.startNextPendingTask()
	}()

	s.setStatus(task, model.TaskStatusStarting)
	s.setProgress(task, model.PhaseParseStart, "Validating URL")

	address, err := platform.ParseRepoURL(task.URL)
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	s.tasksMutex.Lock()
	task.Address = address
	s.tasksMutex.Unlock()

	s.setStatus(task, model.TaskStatusDownloading)
	s.setProgress(task, model.PhaseTraverseStart, "Fetching "+task.GetDisplayTitle())

	ctx := context.Background()
	writer := archive.NewWriter()

	if address.Kind == model.AddressKindFile {
		err = s.downloadSingleFile(ctx, task, address, writer)
	} else {
		err = s.walk(ctx, task, address, writer, address.Path, "", true)
	}
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	filename := address.ArchiveFilename()
	s.setProgress(task, model.PhasePackageStart, "Packaging "+filename)

	blob, err := writer.Build()
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	outputPath, err := platform.SaveBlob(s.downloadDir, filename, blob)
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusCompleted
	task.Progress = 1.0
	task.Percent = model.PhaseDone
	task.Message = "Saved " + filename
	task.OutputPath = outputPath
	task.ArchiveSize = int64(len(blob))
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// downloadSingleFile handles a blob-style address: the one file lands at
// the archive root under its bare filename.
func (s *Service) downloadSingleFile(ctx context.Context, task *model.DownloadTask, address *model.RepoAddress, writer archive.Archiver) error {
	entry, err := s.fetcher.FetchEntry(ctx, address)
	if err != nil {
		return err
	}

	data, err := s.fetcher.FetchFileBytes(ctx, address, entry)
	if err != nil {
		// Per-file failure stays local even for a single-file job
		log.Printf("Failed to fetch %s: %v", entry.Path, err)
		s.countFailedFile(task)
		return writer.AddFile(entry.Name, placeholderFor(entry.Name, err))
	}

	s.countFetchedFile(task)
	return writer.AddFile(entry.Name, data)
}

// walk expands a directory subtree depth-first, appending file entries and
// empty-directory markers to the archive in listing order. repoPath is the
// directory's path inside the repository, zipPrefix its path inside the
// archive ("" at the subtree root). required marks the top-level listing:
// a 404 there is fatal, while a 404 deeper down means an empty directory
// whose marker the parent level already wrote.
func (s *Service) walk(ctx context.Context, task *model.DownloadTask, address *model.RepoAddress, writer archive.Archiver, repoPath, zipPrefix string, required bool) error {
	entries, err := s.fetcher.ListDirectory(ctx, address, repoPath)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) && !required {
			return nil
		}
		return err
	}

	siblingCount := len(entries)
	for index, entry := range entries {
		percent := model.PhaseTraverseStart + index*model.TraverseSpan/siblingCount

		zipPath := entry.Name
		if zipPrefix != "" {
			zipPath = zipPrefix + "/" + entry.Name
		}

		switch entry.Kind {
		case model.EntryKindDirectory:
			s.setProgress(task, percent, "Processing "+zipPath)

			// Marker first so the directory survives an empty subtree
			if err := writer.AddEmptyDirectory(zipPath); err != nil {
				return err
			}
			if err := s.walk(ctx, task, address, writer, entry.Path, zipPath, false); err != nil {
				return err
			}

		case model.EntryKindFile:
			s.setProgress(task, percent, fmt.Sprintf("Downloading %s (%s)", zipPath, humanize.Bytes(uint64(entry.Size))))

			data, err := s.fetcher.FetchFileBytes(ctx, address, &entry)
			if err != nil {
				log.Printf("Failed to fetch %s: %v", entry.Path, err)
				s.countFailedFile(task)
				if err := writer.AddFile(zipPath, placeholderFor(zipPath, err)); err != nil {
					return err
				}
				continue
			}

			if err := writer.AddFile(zipPath, data); err != nil {
				return err
			}
			s.countFetchedFile(task)

		default:
			// Symlinks and submodules expose no content through the API
			log.Printf("Skipping %s entry %s", entry.Kind, entry.Path)
		}
	}

	return nil
}

// startNextPendingTask starts the next pending task if we have capacity
func (s *Service) startNextPendingTask() {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if s.activeCount >= s.maxParallel {
		return
	}

	// Find next pending task
	for _, task := range s.tasks {
		if task.Status == model.TaskStatusPending {
			s.activeCount++
			go s.runTask(task)
			return
		}
	}
}

// setStatus transitions the task status and notifies the UI
func (s *Service) setStatus(task *model.DownloadTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	task.Status = status
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// setProgress raises the task percent and updates the message. The percent
// never moves backward: the traversal formula restarts per directory
// level, so a deep subtree visited after a later sibling would otherwise
// appear to rewind.
func (s *Service) setProgress(task *model.DownloadTask, percent int, message string) {
	s.tasksMutex.Lock()
	if percent > task.Percent {
		task.Percent = percent
		task.Progress = float64(percent) / float64(model.PhaseDone)
	}
	task.Message = message
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// setTaskError sets an error state for a task with a user-facing message
func (s *Service) setTaskError(task *model.DownloadTask, err error) {
	log.Printf("Download task %s failed: %v", task.ID, err)

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusError
	task.LastError = userFacingMessage(err)
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// countFetchedFile increments the archived-file counter
func (s *Service) countFetchedFile(task *model.DownloadTask) {
	s.tasksMutex.Lock()
	task.FileCount++
	s.tasksMutex.Unlock()
}

// countFailedFile increments the placeholder counter
func (s *Service) countFailedFile(task *model.DownloadTask) {
	s.tasksMutex.Lock()
	task.FailedCount++
	s.tasksMutex.Unlock()
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// userFacingMessage maps a failure onto the message shown in the task row
func userFacingMessage(err error) string {
	switch {
	case errors.Is(err, platform.ErrInvalidURL):
		return MsgInvalidURL
	case errors.Is(err, github.ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, github.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, github.ErrAuthRequired):
		return MsgAuthRequired
	default:
		return err.Error()
	}
}

// placeholderFor builds the text entry substituted for an unfetchable file
func placeholderFor(zipPath string, err error) []byte {
	return []byte(fmt.Sprintf(PlaceholderTemplate, zipPath, err))
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
