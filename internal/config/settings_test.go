package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	// Test setting custom value
	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestMaxParallelDownloads(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	if count := settings.GetMaxParallelDownloads(); count != DefaultMaxParallel {
		t.Errorf("Expected default %d, got %d", DefaultMaxParallel, count)
	}

	// Values are clamped to the valid range
	settings.SetMaxParallelDownloads(0)
	if count := settings.GetMaxParallelDownloads(); count != 1 {
		t.Errorf("Expected clamp to 1, got %d", count)
	}

	settings.SetMaxParallelDownloads(100)
	if count := settings.GetMaxParallelDownloads(); count != MaxParallelLimit {
		t.Errorf("Expected clamp to %d, got %d", MaxParallelLimit, count)
	}

	settings.SetMaxParallelDownloads(3)
	if count := settings.GetMaxParallelDownloads(); count != 3 {
		t.Errorf("Expected 3, got %d", count)
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if lang := settings.GetLanguage(); lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	settings.SetLanguage("en")
	if lang := settings.GetLanguage(); lang != "en" {
		t.Errorf("Expected 'en', got %s", lang)
	}

	options := settings.GetLanguageOptions()
	if _, ok := options["en"]; !ok {
		t.Error("Expected 'en' in language options")
	}
}

func TestAutoRevealOnComplete(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if !settings.GetAutoRevealOnComplete() {
		t.Error("Expected auto-reveal to default to true")
	}

	settings.SetAutoRevealOnComplete(false)
	if settings.GetAutoRevealOnComplete() {
		t.Error("Expected auto-reveal to be disabled")
	}
}
