// Package browser holds the catalog of known browser executables and their
// web app profile locations.
package browser

import (
	"os"
	"path/filepath"
)

// Type classifies a browser family; the family decides how a web app
// profile and launch command are shaped.
type Type string

// Browser families.
const (
	Firefox  Type = "firefox"
	Chromium Type = "chromium"
)

// Browser describes one known browser installation.
type Browser struct {
	Type    Type
	Name    string // display name
	ID      string // stable catalog id
	Exec    string // absolute executable path
	Profile string // web app profile dir, relative to the home directory
}

const (
	firefoxProfile  = ".local/share/quick-webapps/firefox"
	chromiumProfile = ".local/share/quick-webapps/chromium"
)

// Native returns the known natively packaged browsers.
func Native() []Browser {
	return []Browser{
		{Firefox, "Firefox", "firefox", "/usr/bin/firefox", firefoxProfile},
		{Firefox, "Firefox Developer Edition", "firefox-developer-edition", "/usr/bin/firefox-developer-edition", firefoxProfile},
		{Firefox, "Firefox Nightly", "firefox-nightly", "/usr/bin/firefox-nightly", firefoxProfile},
		{Firefox, "Firefox ESR", "firefox-esr", "/usr/bin/firefox-esr", firefoxProfile},
		{Firefox, "Librewolf", "librewolf", "/usr/bin/librewolf", firefoxProfile},
		{Firefox, "Waterfox", "waterfox", "/usr/bin/waterfox", firefoxProfile},
		{Firefox, "Waterfox (current)", "waterfox-current", "/usr/bin/waterfox-current", firefoxProfile},
		{Firefox, "Waterfox (classic)", "waterfox-classic", "/usr/bin/waterfox-classic", firefoxProfile},
		{Firefox, "Waterfox 3rd Generation", "waterfox-g3", "/usr/bin/waterfox-g3", firefoxProfile},
		{Firefox, "Waterfox 4th Generation", "waterfox-g4", "/usr/bin/waterfox-g4", firefoxProfile},
		{Chromium, "Brave Browser", "brave-browser", "/usr/bin/brave-browser", chromiumProfile},
		{Chromium, "Brave (bin)", "brave-bin", "/usr/bin/brave-bin", chromiumProfile},
		{Chromium, "Chrome", "google-chrome-stable", "/usr/bin/google-chrome-stable", chromiumProfile},
		{Chromium, "Chrome Beta", "google-chrome-beta", "/usr/bin/google-chrome-beta", chromiumProfile},
		{Chromium, "Chromium", "chromium", "/usr/bin/chromium", chromiumProfile},
		{Chromium, "Chromium Browser", "chromium-browser", "/usr/bin/chromium-browser", chromiumProfile},
		{Chromium, "Chromium (bin)", "chromium-bin", "/usr/bin/chromium-bin-browser", chromiumProfile},
		{Chromium, "Cromite", "cromite", "/usr/bin/cromite", chromiumProfile},
		{Chromium, "Thorium", "thorium-browser", "/usr/bin/thorium-browser", chromiumProfile},
		{Chromium, "Vivaldi", "vivaldi-stable", "/usr/bin/vivaldi-stable", chromiumProfile},
		{Chromium, "Vivaldi Snapshot", "vivaldi-snapshot", "/usr/bin/vivaldi-snapshot", chromiumProfile},
		{Chromium, "Microsoft Edge", "microsoft-edge-stable", "/usr/bin/microsoft-edge-stable", chromiumProfile},
		{Chromium, "Opera", "opera", "/usr/bin/opera", chromiumProfile},
	}
}

// Installed filters the catalog down to browsers whose executable exists.
func Installed() []Browser {
	var found []Browser
	for _, b := range Native() {
		if fi, err := os.Stat(b.Exec); err == nil && !fi.IsDir() {
			found = append(found, b)
		}
	}
	return found
}

// ByID looks up a catalog entry by id. The second return value is false
// when the id is unknown.
func ByID(id string) (Browser, bool) {
	for _, b := range Native() {
		if b.ID == id {
			return b, true
		}
	}
	return Browser{}, false
}

// ProfileDir returns the browser's web app profile directory for appID,
// rooted at home.
func (b Browser) ProfileDir(home, appID string) string {
	return filepath.Join(home, b.Profile, appID)
}
