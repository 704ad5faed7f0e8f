// Package favicon extracts candidate icons referenced by a web page's
// markup and caches them locally for the icon resolver to gate.
package favicon

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	maxPageBytes = 2 << 20
	maxIconBytes = 5 << 20
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// Downloader fetches a page, collects its icon links, and downloads each
// candidate into a local cache directory.
type Downloader struct {
	client   *http.Client
	limiter  *hostLimiter
	cacheDir string
	logger   *slog.Logger
}

// NewDownloader creates a Downloader caching candidates under cacheDir.
func NewDownloader(cacheDir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  newHostLimiter(),
		cacheDir: cacheDir,
		logger:   logger.With(slog.String("component", "favicon")),
	}
}

// Download fetches pageURL, extracts every icon link from its markup plus
// the conventional /favicon.ico root location, downloads the candidates,
// and returns the local paths of those that could be fetched. Candidates
// that fail to download are skipped, not fatal; an error is returned only
// when the page itself cannot be fetched or parsed, and callers treat that
// as zero candidates.
func (d *Downloader) Download(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("not a remote locator: %q", pageURL)
	}

	if err := d.limiter.wait(ctx, base.Host); err != nil {
		return nil, err
	}
	body, err := d.get(ctx, base.String(), maxPageBytes)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	links := iconLinks(doc, base)
	links = append(links, base.Scheme+"://"+base.Host+"/favicon.ico")

	var paths []string
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		p, err := d.fetchCandidate(ctx, link)
		if err != nil {
			d.logger.Debug("candidate skipped",
				slog.String("url", link),
				slog.String("error", err.Error()))
			continue
		}
		paths = append(paths, p)
	}

	d.logger.Debug("favicon extraction completed",
		slog.String("page", pageURL),
		slog.Int("candidates", len(paths)))

	return paths, nil
}

// fetchCandidate downloads one icon URL into the cache directory. The file
// name is derived from the URL so repeated runs reuse the same slot.
func (d *Downloader) fetchCandidate(ctx context.Context, iconURL string) (string, error) {
	u, err := url.Parse(iconURL)
	if err != nil {
		return "", err
	}
	if err := d.limiter.wait(ctx, u.Host); err != nil {
		return "", err
	}

	data, err := d.get(ctx, iconURL, maxIconBytes)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty body")
	}

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	sum := sha1.Sum([]byte(iconURL))
	name := hex.EncodeToString(sum[:]) + candidateExt(u)
	dest := filepath.Join(d.cacheDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("caching candidate: %w", err)
	}
	return dest, nil
}

func (d *Downloader) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// iconLinks walks the document tree for <link> elements whose rel names an
// icon and resolves their hrefs against the page URL.
func iconLinks(doc *html.Node, base *url.URL) []string {
	var links []string
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "link" {
			continue
		}
		var rel, href string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "rel":
				rel = attr.Val
			case "href":
				href = attr.Val
			}
		}
		if href == "" || !relNamesIcon(rel) {
			continue
		}
		if u, err := base.Parse(href); err == nil && u.Scheme != "" {
			links = append(links, u.String())
		}
	}
	return links
}

// relNamesIcon reports whether a link rel attribute refers to an icon:
// "icon", "shortcut icon", "apple-touch-icon" and friends.
func relNamesIcon(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" || strings.HasPrefix(token, "apple-touch-icon") {
			return true
		}
	}
	return false
}

// candidateExt keeps the source extension when it looks like an image
// extension, defaulting to .ico. The decoder gate never trusts it; it only
// makes the cache directory readable.
func candidateExt(u *url.URL) string {
	switch ext := path.Ext(u.Path); ext {
	case ".png", ".svg", ".ico", ".gif", ".jpg", ".jpeg", ".webp", ".bmp":
		return ext
	default:
		return ".ico"
	}
}
