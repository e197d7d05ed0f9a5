// Package migrations embeds the goose SQL migrations so binaries can apply
// the schema without the files on disk.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

const downMarker = "-- +goose Down"

// UpScripts returns the Up section of every migration in file name order.
func UpScripts() ([]string, error) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		raw, err := FS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		script := string(raw)
		if i := strings.Index(script, downMarker); i >= 0 {
			script = script[:i]
		}
		out = append(out, script)
	}
	return out, nil
}
