// Package storage defines the binary object store that holds uploaded
// note files. Objects live under per-user prefixes ("<userID>/<name>").
package storage

// Provider is the interface for note file operations.
type Provider interface {
	// Download returns the raw bytes of the object at path.
	Download(path string) ([]byte, error)
	// Write atomically stores content at path.
	Write(path string, content []byte) error
	// Delete removes the object at path.
	Delete(path string) error
	// List returns the paths of every object under prefix.
	List(prefix string) ([]string, error)
}
