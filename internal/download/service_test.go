package download

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ghget/gh-downloader/internal/github"
	"github.com/ghget/gh-downloader/internal/model"
)

// fakeFetcher serves a directory tree from memory, standing in for the
// GitHub API.
type fakeFetcher struct {
	listings map[string][]model.TreeEntry // repo path -> ordered entries
	files    map[string][]byte            // repo path -> file bytes
	fileErrs map[string]error             // repo path -> byte fetch failure
	listErrs map[string]error             // repo path -> listing failure
	entry    *model.TreeEntry             // single-file metadata
	entryErr error

	block chan struct{} // when set, ListDirectory waits until closed
}

func (f *fakeFetcher) ListDirectory(ctx context.Context, address *model.RepoAddress, path string) ([]model.TreeEntry, error) {
	if f.block != nil {
		<-f.block
	}
	if err, ok := f.listErrs[path]; ok {
		return nil, err
	}
	entries, ok := f.listings[path]
	if !ok {
		return nil, &github.APIError{StatusCode: http.StatusNotFound, URL: path}
	}
	return entries, nil
}

func (f *fakeFetcher) FetchEntry(ctx context.Context, address *model.RepoAddress) (*model.TreeEntry, error) {
	if f.entryErr != nil {
		return nil, f.entryErr
	}
	return f.entry, nil
}

func (f *fakeFetcher) FetchFileBytes(ctx context.Context, address *model.RepoAddress, entry *model.TreeEntry) ([]byte, error) {
	if err, ok := f.fileErrs[entry.Path]; ok {
		return nil, err
	}
	data, ok := f.files[entry.Path]
	if !ok {
		return nil, fmt.Errorf("no bytes for %s", entry.Path)
	}
	return data, nil
}

// progressRecorder captures update callbacks. Callbacks fire from the job
// goroutine after its own mutations, so field reads here are safe.
type progressRecorder struct {
	mu       sync.Mutex
	percents []int
	final    model.DownloadTask
	done     chan struct{}
	once     sync.Once
}

func newProgressRecorder() *progressRecorder {
	return &progressRecorder{done: make(chan struct{})}
}

func (r *progressRecorder) onUpdate(task *model.DownloadTask) {
	r.mu.Lock()
	r.percents = append(r.percents, task.Percent)
	if task.Status.IsFinished() {
		r.final = *task
	}
	r.mu.Unlock()

	if task.Status.IsFinished() {
		r.once.Do(func() { close(r.done) })
	}
}

// wait blocks until the job reaches a terminal state and returns a
// snapshot of the finished task.
func (r *progressRecorder) wait(t *testing.T) model.DownloadTask {
	t.Helper()

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for task to finish")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

// fileEntry builds a file row with a synthetic download URL.
func fileEntry(name, path string) model.TreeEntry {
	return model.TreeEntry{
		Name: name, Path: path, SHA: "sha-" + name, Size: int64(len(name)),
		Kind: model.EntryKindFile, DownloadURL: "http://raw.example.com/" + path,
	}
}

func dirEntry(name, path string) model.TreeEntry {
	return model.TreeEntry{Name: name, Path: path, SHA: "sha-" + name, Kind: model.EntryKindDirectory}
}

// treeFetcher builds the mocked tree {a.txt, sub/{b.txt}, empty/} rooted
// at the repository root.
func treeFetcher() *fakeFetcher {
	return &fakeFetcher{
		listings: map[string][]model.TreeEntry{
			"": {
				fileEntry("a.txt", "a.txt"),
				dirEntry("sub", "sub"),
				dirEntry("empty", "empty"),
			},
			"sub": {
				fileEntry("b.txt", "sub/b.txt"),
			},
			// "empty" is deliberately absent: listing it yields 404
		},
		files: map[string][]byte{
			"a.txt":     []byte("alpha"),
			"sub/b.txt": []byte("beta"),
		},
	}
}

// readZip returns entry names in archive order and a name -> content map.
func readZip(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open archive %s: %v", path, err)
	}
	defer reader.Close()

	var names []string
	contents := make(map[string]string)
	for _, file := range reader.File {
		names = append(names, file.Name)

		rc, err := file.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %s: %v", file.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry %s: %v", file.Name, err)
		}
		contents[file.Name] = string(body)
	}

	return names, contents
}

func runJob(t *testing.T, fetcher github.ContentFetcher, url string) (model.DownloadTask, *progressRecorder) {
	t.Helper()

	service := NewService(fetcher, t.TempDir(), 1)
	recorder := newProgressRecorder()
	service.SetUpdateCallback(recorder.onUpdate)

	if _, err := service.AddTask(url); err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}

	return recorder.wait(t), recorder
}

func TestNewService(t *testing.T) {
	service := NewService(&fakeFetcher{}, "/tmp", 2)

	if service.downloadDir != "/tmp" {
		t.Errorf("Expected downloadDir to be '/tmp', got '%s'", service.downloadDir)
	}

	if service.maxParallel != 2 {
		t.Errorf("Expected maxParallel to be 2, got %d", service.maxParallel)
	}

	if len(service.tasks) != 0 {
		t.Errorf("Expected empty tasks map, got %d items", len(service.tasks))
	}
}

func TestAddTaskDuplicate(t *testing.T) {
	fetcher := treeFetcher()
	fetcher.block = make(chan struct{})

	service := NewService(fetcher, t.TempDir(), 1)
	recorder := newProgressRecorder()
	service.SetUpdateCallback(recorder.onUpdate)

	task, err := service.AddTask("https://github.com/octocat/hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Same URL while the first job is still active
	if _, err := service.AddTask("https://github.com/octocat/hello"); err == nil {
		t.Error("Expected error for duplicate URL, got nil")
	}

	// A different URL is fine
	if _, err := service.AddTask("https://github.com/octocat/other"); err != nil {
		t.Errorf("Expected no error for distinct URL, got %v", err)
	}

	close(fetcher.block)
	recorder.wait(t)

	if _, exists := service.GetTask(task.ID); !exists {
		t.Error("Expected task to be retrievable by ID")
	}
}

func TestDownloadDirectoryTree(t *testing.T) {
	final, _ := runJob(t, treeFetcher(), "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	if filepath.Base(final.OutputPath) != "hello.zip" {
		t.Errorf("Expected root download filename 'hello.zip', got %s", filepath.Base(final.OutputPath))
	}

	names, contents := readZip(t, final.OutputPath)
	expected := []string{"a.txt", "sub/", "sub/b.txt", "empty/"}
	if len(names) != len(expected) {
		t.Fatalf("Expected entries %v, got %v", expected, names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Entry %d: expected %s, got %s", i, name, names[i])
		}
	}

	if contents["a.txt"] != "alpha" || contents["sub/b.txt"] != "beta" {
		t.Errorf("Unexpected file contents: %v", contents)
	}

	if final.FileCount != 2 {
		t.Errorf("Expected 2 archived files, got %d", final.FileCount)
	}
	if final.FailedCount != 0 {
		t.Errorf("Expected no failed files, got %d", final.FailedCount)
	}
	if final.ArchiveSize <= 0 {
		t.Error("Expected positive archive size")
	}
}

func TestPerFileFailureProducesPlaceholder(t *testing.T) {
	fetcher := treeFetcher()
	fetcher.fileErrs = map[string]error{
		"a.txt": fmt.Errorf("%w: blob sha-a has encoding %q", github.ErrUnsupportedEncoding, "utf-8"),
	}

	final, _ := runJob(t, fetcher, "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed despite file failure, got %s (%s)", final.Status, final.LastError)
	}

	names, contents := readZip(t, final.OutputPath)
	// Same entry count as a fully successful run
	if len(names) != 4 {
		t.Fatalf("Expected 4 entries, got %v", names)
	}

	placeholder := contents["a.txt"]
	if !strings.Contains(placeholder, "a.txt") || !strings.Contains(placeholder, "could not be downloaded") {
		t.Errorf("Unexpected placeholder content: %q", placeholder)
	}
	if contents["sub/b.txt"] != "beta" {
		t.Errorf("Remaining file should download normally, got %q", contents["sub/b.txt"])
	}

	if final.FailedCount != 1 {
		t.Errorf("Expected 1 failed file, got %d", final.FailedCount)
	}
	if final.FileCount != 1 {
		t.Errorf("Expected 1 archived file, got %d", final.FileCount)
	}
}

func TestSingleFileDownload(t *testing.T) {
	fetcher := &fakeFetcher{
		entry: &model.TreeEntry{
			Name: "writer.go", Path: "src/archive/zip/writer.go", SHA: "sha-w",
			Size: 9, Kind: model.EntryKindFile, DownloadURL: "http://raw.example.com/writer.go",
		},
		files: map[string][]byte{
			"src/archive/zip/writer.go": []byte("package x"),
		},
	}

	final, _ := runJob(t, fetcher, "https://github.com/golang/go/blob/master/src/archive/zip/writer.go")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	if filepath.Base(final.OutputPath) != "go-writer.go.zip" {
		t.Errorf("Expected filename 'go-writer.go.zip', got %s", filepath.Base(final.OutputPath))
	}

	names, contents := readZip(t, final.OutputPath)
	if len(names) != 1 || names[0] != "writer.go" {
		t.Fatalf("Expected single 'writer.go' entry, got %v", names)
	}
	if contents["writer.go"] != "package x" {
		t.Errorf("Unexpected content: %q", contents["writer.go"])
	}
}

func TestSubfolderDownloadFilename(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: map[string][]model.TreeEntry{
			"docs/guide": {fileEntry("intro.md", "docs/guide/intro.md")},
		},
		files: map[string][]byte{
			"docs/guide/intro.md": []byte("# Intro"),
		},
	}

	final, _ := runJob(t, fetcher, "https://github.com/octocat/hello/tree/main/docs/guide")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	if filepath.Base(final.OutputPath) != "hello-guide.zip" {
		t.Errorf("Expected filename 'hello-guide.zip', got %s", filepath.Base(final.OutputPath))
	}

	names, _ := readZip(t, final.OutputPath)
	if len(names) != 1 || names[0] != "intro.md" {
		t.Errorf("Expected single 'intro.md' entry relative to the subtree, got %v", names)
	}
}

func TestSymlinkAndSubmoduleSkipped(t *testing.T) {
	fetcher := treeFetcher()
	fetcher.listings[""] = append(fetcher.listings[""],
		model.TreeEntry{Name: "link", Path: "link", Kind: model.EntryKindSymlink},
		model.TreeEntry{Name: "vendor", Path: "vendor", Kind: model.EntryKindSubmodule},
	)

	final, _ := runJob(t, fetcher, "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	names, _ := readZip(t, final.OutputPath)
	for _, name := range names {
		if name == "link" || strings.HasPrefix(name, "vendor") {
			t.Errorf("Symlink/submodule should not be materialized, found %s", name)
		}
	}
}

func TestInvalidURLFailsFast(t *testing.T) {
	final, _ := runJob(t, &fakeFetcher{}, "https://example.com/not/github")

	if final.Status != model.TaskStatusError {
		t.Fatalf("Expected Error, got %s", final.Status)
	}
	if final.LastError != MsgInvalidURL {
		t.Errorf("Expected invalid URL message, got %q", final.LastError)
	}
	if final.Percent == model.PhaseDone {
		t.Error("Failed job must not report 100%")
	}
}

func TestRootListingNotFoundIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{listings: map[string][]model.TreeEntry{}}

	final, _ := runJob(t, fetcher, "https://github.com/octocat/missing")

	if final.Status != model.TaskStatusError {
		t.Fatalf("Expected Error, got %s", final.Status)
	}
	if final.LastError != MsgNotFound {
		t.Errorf("Expected not-found message, got %q", final.LastError)
	}
}

func TestRateLimitMessage(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: map[string][]model.TreeEntry{},
		listErrs: map[string]error{
			"": &github.APIError{StatusCode: http.StatusForbidden, URL: "contents/"},
		},
	}

	final, _ := runJob(t, fetcher, "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusError {
		t.Fatalf("Expected Error, got %s", final.Status)
	}
	if final.LastError != MsgRateLimited {
		t.Errorf("Expected rate limit message, got %q", final.LastError)
	}
}

func TestChildListingErrorIsFatal(t *testing.T) {
	fetcher := treeFetcher()
	fetcher.listErrs = map[string]error{
		"sub": &github.APIError{StatusCode: http.StatusInternalServerError, URL: "contents/sub"},
	}

	final, _ := runJob(t, fetcher, "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusError {
		t.Fatalf("Expected Error for non-404 listing failure, got %s", final.Status)
	}
}

func TestChildListingNotFoundMeansEmptyDirectory(t *testing.T) {
	// treeFetcher has no listing for "empty": the walker must keep the
	// marker written by the parent level and carry on
	final, _ := runJob(t, treeFetcher(), "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	names, _ := readZip(t, final.OutputPath)
	found := false
	for _, name := range names {
		if name == "empty/" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'empty/' marker in %v", names)
	}
}

func TestProgressMonotonicAndTerminal(t *testing.T) {
	final, recorder := runJob(t, treeFetcher(), "https://github.com/octocat/hello")

	if final.Status != model.TaskStatusCompleted {
		t.Fatalf("Expected Completed, got %s (%s)", final.Status, final.LastError)
	}

	recorder.mu.Lock()
	percents := append([]int(nil), recorder.percents...)
	recorder.mu.Unlock()

	if len(percents) == 0 {
		t.Fatal("Expected progress updates")
	}

	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("Progress went backward at update %d: %v", i, percents)
		}
	}

	if percents[len(percents)-1] != model.PhaseDone {
		t.Errorf("Expected final percent %d, got %d", model.PhaseDone, percents[len(percents)-1])
	}
}

func TestUserFacingMessagePassthrough(t *testing.T) {
	err := errors.New("connection reset by peer")
	if msg := userFacingMessage(err); msg != err.Error() {
		t.Errorf("Expected passthrough of unknown errors, got %q", msg)
	}
}
