// Package assets bundles the default word bank so the service can start
// without any files on disk.
package assets

import (
	"embed"
)

//go:embed words.json
var FS embed.FS

// WordBank returns the embedded default catalog document.
func WordBank() ([]byte, error) {
	return FS.ReadFile("words.json")
}
