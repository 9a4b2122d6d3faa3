package ui

// Package ui contains the Fyne-based desktop user interface for the
// application. It wires user interactions to the download service and
// renders tasks, notifications, and settings. All UI strings are localized
// via Localization.
