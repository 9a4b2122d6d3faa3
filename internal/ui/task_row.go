package ui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/ghget/gh-downloader/internal/model"
)

// TaskRow represents a compact task row widget
type TaskRow struct {
	widget.BaseWidget

	task         *model.DownloadTask
	localization *Localization

	// UI components
	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	detailLabel   *widget.Label
	progressBar   *widget.ProgressBar

	// Action buttons
	revealBtn *widget.Button

	// Callbacks
	onReveal func(filePath string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(task *model.DownloadTask, localization *Localization) *TaskRow {
	if task == nil {
		log.Printf("Warning: NewTaskRow called with nil task")
		task = &model.DownloadTask{ID: "dummy", Status: model.TaskStatusPending}
	}

	tr := &TaskRow{
		task:         task,
		localization: localization,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.UpdateFromTask(task)
	return tr
}

// SetRevealCallback sets the action invoked by the open-folder button
func (tr *TaskRow) SetRevealCallback(onReveal func(filePath string)) {
	tr.onReveal = onReveal
}

// createUI creates the row components
func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.progressLabel = widget.NewLabel("")
	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.Truncation = fyne.TextTruncateEllipsis

	tr.progressBar = widget.NewProgressBar()

	tr.revealBtn = widget.NewButton(IconFolder+" "+tr.localization.GetText(KeyOpenFolder), func() {
		if tr.onReveal != nil && tr.task.OutputPath != "" {
			tr.onReveal(tr.task.OutputPath)
		}
	})
	tr.revealBtn.Hide()
}

// UpdateFromTask refreshes the row from the task state
func (tr *TaskRow) UpdateFromTask(task *model.DownloadTask) {
	tr.task = task

	tr.titleLabel.SetText(task.GetDisplayTitle())
	tr.statusLabel.SetText(task.Status.String())
	tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, task.Percent))
	tr.progressBar.SetValue(task.Progress)

	switch {
	case task.Status == model.TaskStatusError:
		tr.detailLabel.SetText(IconError + " " + task.LastError)
		tr.revealBtn.Hide()
	case task.Status == model.TaskStatusCompleted:
		tr.detailLabel.SetText(tr.completedSummary())
		tr.revealBtn.Show()
	case task.Message != "":
		tr.detailLabel.SetText(task.Message)
		tr.revealBtn.Hide()
	default:
		tr.detailLabel.SetText(DashPlaceholder)
		tr.revealBtn.Hide()
	}

	tr.Refresh()
}

// completedSummary builds the "N files · 1.2 MB" line for a finished task
func (tr *TaskRow) completedSummary() string {
	summary := fmt.Sprintf("%d files%s%s",
		tr.task.FileCount, MiddleDotSeparator, humanize.Bytes(uint64(tr.task.ArchiveSize)))
	if tr.task.FailedCount > 0 {
		summary += fmt.Sprintf("%s%d failed", MiddleDotSeparator, tr.task.FailedCount)
	}
	return summary
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	header := container.NewBorder(nil, nil, nil,
		container.NewHBox(tr.statusLabel, tr.progressLabel, tr.revealBtn),
		tr.titleLabel)

	content := container.NewVBox(header, tr.progressBar, tr.detailLabel)
	return widget.NewSimpleRenderer(content)
}

// MinSize returns the minimum row size
func (tr *TaskRow) MinSize() fyne.Size {
	min := tr.BaseWidget.MinSize()
	if min.Width < RowMinWidth {
		min.Width = RowMinWidth
	}
	if min.Height < RowMinHeight {
		min.Height = RowMinHeight
	}
	return min
}
