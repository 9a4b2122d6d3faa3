package archive

// Archiver defines the interface for the archive writer.
type Archiver interface {
	AddFile(path string, data []byte) error
	AddEmptyDirectory(path string) error
	Build() ([]byte, error)
	FileCount() int
}
