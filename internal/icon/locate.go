package icon

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SearchDir recursively walks root for icon files whose name contains
// fragment (case-sensitive) and which pass the decoder gate at min pixels.
// Returned paths are deduplicated and in traversal order. Unreadable
// entries and broken links are skipped; a single bad file never aborts the
// search. The walk is read-only and stops early when ctx is canceled.
func SearchDir(ctx context.Context, root, fragment string, min int) []string {
	var found []string
	seen := make(map[string]struct{})

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.Contains(d.Name(), fragment) {
			return nil
		}
		if _, dup := seen[path]; dup {
			return nil
		}
		if gateFile(path, min) {
			seen[path] = struct{}{}
			found = append(found, path)
		}
		return nil
	})

	return found
}

// gateFile classifies a candidate by extension and runs the matching fast
// path of the decoder gate: vector sources are tree-parsed, everything else
// is raster decoded. A vector-named file that fails to parse is rejected;
// it is not retried as raster.
func gateFile(path string, min int) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	dec, ok := DecodeAndCheck(data, min)
	if !ok {
		return false
	}
	if IsVectorPath(path) {
		return dec.Kind == KindVector
	}
	return true
}
