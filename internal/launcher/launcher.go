// Package launcher writes freedesktop .desktop entries for created web
// apps.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sydlexius/quickwebapps/internal/browser"
	"github.com/sydlexius/quickwebapps/internal/filesystem"
)

// Entry describes one launcher entry to write.
type Entry struct {
	ID      string // stable app id, used for the window class and profile
	Name    string
	URL     string
	Icon    string // path to the normalized icon file
	Browser browser.Browser
}

// Writer persists launcher entries into an applications directory.
type Writer struct {
	dir  string
	home string
}

// NewWriter creates a Writer targeting dir, with home used to place
// per-app browser profiles.
func NewWriter(dir, home string) *Writer {
	return &Writer{dir: dir, home: home}
}

// Path returns the destination for an entry name.
func (w *Writer) Path(name string) string {
	base := "QuickWebApps-" + strings.ReplaceAll(name, " ", "") + ".desktop"
	return filepath.Join(w.dir, base)
}

// Write renders and atomically persists the .desktop file for an entry.
// Failures propagate: a web app without its launcher entry is not created.
func (w *Writer) Write(e Entry) (string, error) {
	if e.Name == "" || e.URL == "" {
		return "", fmt.Errorf("launcher entry needs a name and URL")
	}

	wmClass := "QuickWebApps-" + e.ID
	var sb strings.Builder
	sb.WriteString("[Desktop Entry]\n")
	sb.WriteString("Type=Application\n")
	sb.WriteString("Version=1.0\n")
	fmt.Fprintf(&sb, "Name=%s\n", e.Name)
	fmt.Fprintf(&sb, "Comment=Web app for %s\n", e.URL)
	fmt.Fprintf(&sb, "Exec=%s\n", w.execLine(e))
	if e.Icon != "" {
		fmt.Fprintf(&sb, "Icon=%s\n", e.Icon)
	}
	sb.WriteString("Terminal=false\n")
	sb.WriteString("Categories=Network;WebBrowser;\n")
	fmt.Fprintf(&sb, "StartupWMClass=%s\n", wmClass)

	dest := w.Path(e.Name)
	if err := filesystem.WriteFileAtomic(dest, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing launcher entry: %w", err)
	}
	return dest, nil
}

// Remove deletes the launcher entry for a name. Removing an entry that is
// already gone is not an error.
func (w *Writer) Remove(name string) error {
	err := os.Remove(w.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing launcher entry: %w", err)
	}
	return nil
}

// execLine builds the browser invocation for an entry. Chromium-family
// browsers open the URL in app mode with a dedicated profile; Firefox
// derivatives get an isolated profile and a new window.
func (w *Writer) execLine(e Entry) string {
	profile := e.Browser.ProfileDir(w.home, e.ID)
	switch e.Browser.Type {
	case browser.Chromium:
		return fmt.Sprintf("%s --app=%s --user-data-dir=%s --class=QuickWebApps-%s",
			e.Browser.Exec, e.URL, profile, e.ID)
	default:
		return fmt.Sprintf("%s --no-remote --profile %s --class QuickWebApps-%s --new-window %s",
			e.Browser.Exec, profile, e.ID, e.URL)
	}
}
