package ui

import (
	"log"
	"sort"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ghget/gh-downloader/internal/config"
	"github.com/ghget/gh-downloader/internal/download"
	"github.com/ghget/gh-downloader/internal/model"
	"github.com/ghget/gh-downloader/internal/platform"
)

// StatusFilter enumerates visible subsets of tasks in the UI.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterCompleted
	FilterErrors
)

// String returns the label for the filter tab.
func (sf StatusFilter) String() string {
	switch sf {
	case FilterAll:
		return "All"
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	case FilterErrors:
		return "Errors"
	default:
		return "Unknown"
	}
}

// RootUI represents the main UI structure
type RootUI struct {
	window        fyne.Window
	urlEntry      *widget.Entry
	downloadBtn   *widget.Button
	taskList      *widget.List
	currentFilter StatusFilter
	filteredTasks []*model.DownloadTask
	downloadSvc   download.Downloader
	settings      *config.Settings
	localization  *Localization

	// UI update debouncing
	lastUIUpdate  time.Time
	uiUpdateMutex sync.Mutex

	// Notification panel
	notificationLabel *widget.Label
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, downloadSvc download.Downloader) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		downloadSvc:  downloadSvc,
		settings:     settings,
		localization: localization,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	// Set up callback for download updates
	ui.downloadSvc.SetUpdateCallback(ui.onTaskUpdate)

	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	// URL entry + download button row
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.urlEntry.OnSubmitted = func(string) { ui.onDownloadClick() }

	ui.downloadBtn = widget.NewButton(ui.localization.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	urlRow := container.NewBorder(nil, nil, nil, ui.downloadBtn, ui.urlEntry)

	// Status filter tabs
	tabs := container.NewAppTabs(
		container.NewTabItem(FilterAll.String(), widget.NewLabel("")),
		container.NewTabItem(FilterActive.String(), widget.NewLabel("")),
		container.NewTabItem(FilterCompleted.String(), widget.NewLabel("")),
		container.NewTabItem(FilterErrors.String(), widget.NewLabel("")),
	)
	tabs.OnSelected = func(item *container.TabItem) {
		for i := FilterAll; i <= FilterErrors; i++ {
			if item.Text == i.String() {
				ui.onFilterChanged(i)
				return
			}
		}
	}

	// Task list
	ui.taskList = widget.NewList(
		func() int { return len(ui.filteredTasks) },
		ui.createTaskItem,
		ui.updateTaskItem,
	)

	// Notification line
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Hide()

	top := container.NewVBox(urlRow, tabs, ui.notificationLabel)
	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.taskList))
}

// createMenu builds the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(IconSettings+" "+ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageItems := []*fyne.MenuItem{}
	for code, label := range ui.localization.GetAvailableLanguages() {
		langCode := code
		languageItems = append(languageItems, fyne.NewMenuItem(label, func() {
			ui.onLanguageChange(langCode)
		}))
	}
	languageMenu := fyne.NewMenuItem(IconLanguage+" "+ui.localization.GetText(KeyLanguage), nil)
	languageMenu.ChildMenu = fyne.NewMenu("", languageItems...)

	fileMenu := fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem, languageMenu)
	ui.window.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

// onLanguageChange applies a new UI language
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.settings.SetLanguage(langCode)
	ui.localization.SetLanguage(langCode)
	ui.refreshUITexts()
}

// refreshUITexts re-applies localized strings after a language change
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.downloadBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.createMenu()
}

// onDownloadClick handles the download button
func (ui *RootUI) onDownloadClick() {
	url := ui.urlEntry.Text
	if url == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL))
		return
	}

	// Fail fast on malformed input so the user gets feedback before a
	// task row appears; the service re-validates on its own
	if _, err := platform.ParseRepoURL(url); err != nil {
		ui.showNotification(download.MsgInvalidURL)
		return
	}

	if _, err := ui.downloadSvc.AddTask(url); err != nil {
		ui.showNotification(ui.localization.GetText(KeyAlreadyInQueue))
		return
	}

	ui.urlEntry.SetText("")
	ui.showNotification(ui.localization.GetText(KeyTaskAdded))
	ui.refreshTasks()
}

// onShowSettings opens the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.window, func() {
		ui.downloadSvc.SetDownloadDirectory(ui.settings.GetDownloadDirectory())
		ui.downloadSvc.SetMaxParallelDownloads(ui.settings.GetMaxParallelDownloads())
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.showNotification(ui.localization.GetText(KeySettingsSaved))
	}).Show()
}

// showNotification displays a transient status line
func (ui *RootUI) showNotification(message string) {
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		ui.notificationLabel.Show()
	})
}

// createTaskItem creates one reusable list row
func (ui *RootUI) createTaskItem() fyne.CanvasObject {
	row := NewTaskRow(nil, ui.localization)
	row.SetRevealCallback(ui.onRevealFile)
	return row
}

// updateTaskItem binds a task to a recycled row
func (ui *RootUI) updateTaskItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id < 0 || id >= len(ui.filteredTasks) {
		return
	}

	row, ok := item.(*TaskRow)
	if !ok {
		log.Printf("Unexpected list item type %T", item)
		return
	}

	row.UpdateFromTask(ui.filteredTasks[id])
}

// onFilterChanged switches the visible task subset
func (ui *RootUI) onFilterChanged(filter StatusFilter) {
	ui.currentFilter = filter
	ui.refreshTasks()
}

// refreshTasks rebuilds the filtered slice and refreshes the list
func (ui *RootUI) refreshTasks() {
	tasks := ui.downloadSvc.GetAllTasks()

	// Newest first
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.After(tasks[j].StartedAt)
	})

	filtered := make([]*model.DownloadTask, 0, len(tasks))
	for _, task := range tasks {
		if ui.shouldShowTask(task) {
			filtered = append(filtered, task)
		}
	}

	fyne.Do(func() {
		ui.filteredTasks = filtered
		ui.taskList.Refresh()
	})
}

// shouldShowTask applies the current filter
func (ui *RootUI) shouldShowTask(task *model.DownloadTask) bool {
	switch ui.currentFilter {
	case FilterActive:
		return task.Status.IsActive() || task.Status == model.TaskStatusPending
	case FilterCompleted:
		return task.Status == model.TaskStatusCompleted
	case FilterErrors:
		return task.Status == model.TaskStatusError
	default:
		return true
	}
}

// onRevealFile shows the saved archive in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		log.Printf("Failed to reveal %s: %v", filePath, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile))
	}
}

// onTaskUpdate handles task updates from the download service
func (ui *RootUI) onTaskUpdate(task *model.DownloadTask) {
	if task.Status == model.TaskStatusCompleted {
		ui.showNotification(ui.localization.GetText(KeyDownloadCompleted) + ": " + task.GetDisplayTitle())

		if ui.settings.GetAutoRevealOnComplete() && task.OutputPath != "" {
			ui.onRevealFile(task.OutputPath)
		}
	}

	// Debounce intermediate progress refreshes; terminal states always refresh
	if !task.Status.IsFinished() {
		ui.uiUpdateMutex.Lock()
		tooSoon := time.Since(ui.lastUIUpdate) < UIUpdateDebounce
		if !tooSoon {
			ui.lastUIUpdate = time.Now()
		}
		ui.uiUpdateMutex.Unlock()
		if tooSoon {
			return
		}
	}

	ui.refreshTasks()
}
