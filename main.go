package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ghget/gh-downloader/internal/config"
	"github.com/ghget/gh-downloader/internal/download"
	"github.com/ghget/gh-downloader/internal/github"
	"github.com/ghget/gh-downloader/internal/platform"
	"github.com/ghget/gh-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ghget.gh-downloader"
	AppName = "GH Downloader"

	WindowWidth  = 800
	WindowHeight = 600
)

func main() {
	fmt.Printf("GH Downloader v%s starting...\n", version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	settings := config.NewSettings(myApp)
	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		fmt.Printf("failed to ensure downloads dir: %v\n", err)
	}

	fetcher := github.NewClient()
	downloadSvc := download.NewService(fetcher, downloadsDir, settings.GetMaxParallelDownloads())

	// Create and setup UI
	ui.NewRootUI(myWindow, myApp, downloadSvc)

	// Show and run
	myWindow.ShowAndRun()
}
