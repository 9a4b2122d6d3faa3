package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

// readArchive opens built ZIP bytes and returns entry names in order plus
// a name → content map for file entries.
func readArchive(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to open built archive: %v", err)
	}

	names := make([]string, 0, len(reader.File))
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

func TestNewWriter(t *testing.T) {
	writer := NewWriter()

	if writer.FileCount() != 0 {
		t.Errorf("Expected empty writer, got %d files", writer.FileCount())
	}

	data, err := writer.Build()
	if err != nil {
		t.Fatalf("Failed to build empty archive: %v", err)
	}

	names, _ := readArchive(t, data)
	if len(names) != 0 {
		t.Errorf("Expected no entries, got %v", names)
	}
}

func TestAddFileAndBuild(t *testing.T) {
	writer := NewWriter()

	if err := writer.AddFile("a.txt", []byte("alpha")); err != nil {
		t.Fatalf("Failed to add a.txt: %v", err)
	}
	if err := writer.AddFile("sub/b.txt", []byte("beta")); err != nil {
		t.Fatalf("Failed to add sub/b.txt: %v", err)
	}

	if writer.FileCount() != 2 {
		t.Errorf("Expected 2 files, got %d", writer.FileCount())
	}

	data, err := writer.Build()
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}

	names, contents := readArchive(t, data)
	expected := []string{"a.txt", "sub/b.txt"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d entries, got %v", len(expected), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Entry %d: expected %s, got %s", i, name, names[i])
		}
	}

	if contents["a.txt"] != "alpha" || contents["sub/b.txt"] != "beta" {
		t.Errorf("Unexpected contents: %v", contents)
	}
}

func TestAddEmptyDirectory(t *testing.T) {
	writer := NewWriter()

	if err := writer.AddEmptyDirectory("empty"); err != nil {
		t.Fatalf("Failed to add directory marker: %v", err)
	}

	data, err := writer.Build()
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}

	names, _ := readArchive(t, data)
	if len(names) != 1 || names[0] != "empty/" {
		t.Errorf("Expected single 'empty/' marker, got %v", names)
	}
}

func TestNormalizesPaths(t *testing.T) {
	writer := NewWriter()

	if err := writer.AddFile("/leading/slash.txt", []byte("x")); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}
	if err := writer.AddFile("back\\slash.txt", []byte("y")); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}

	data, err := writer.Build()
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}

	names, _ := readArchive(t, data)
	if names[0] != "leading/slash.txt" {
		t.Errorf("Expected leading slash stripped, got %s", names[0])
	}
	if names[1] != "back/slash.txt" {
		t.Errorf("Expected backslash converted, got %s", names[1])
	}
}

func TestBuildOnlyOnce(t *testing.T) {
	writer := NewWriter()
	if err := writer.AddFile("a.txt", []byte("a")); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}

	if _, err := writer.Build(); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	if _, err := writer.Build(); err == nil {
		t.Error("Expected error on second build, got nil")
	}

	if err := writer.AddFile("late.txt", []byte("late")); err == nil {
		t.Error("Expected error adding file after build, got nil")
	}

	if err := writer.AddEmptyDirectory("late"); err == nil {
		t.Error("Expected error adding directory after build, got nil")
	}
}
