package icon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// maxFetchBytes bounds how much of a remote body is read when fetching an
// icon directly.
const maxFetchBytes = 5 << 20

// FaviconFetcher extracts candidate icons referenced by a web page and
// returns their locally cached paths. An error means zero candidates, never
// a fatal condition.
type FaviconFetcher interface {
	Download(ctx context.Context, pageURL string) ([]string, error)
}

// Resolver composes the acquisition strategies: direct fetch, favicon
// extraction, and icon-theme directory search.
type Resolver struct {
	client   *http.Client
	favicons FaviconFetcher
	userRoot string
	sysRoot  string
	logger   *slog.Logger
}

// NewResolver creates a Resolver searching the given user and system
// icon-theme roots. favicons may be nil, in which case remote references
// only go through direct fetch and theme search.
func NewResolver(favicons FaviconFetcher, userRoot, sysRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:   &http.Client{Timeout: 15 * time.Second},
		favicons: favicons,
		userRoot: userRoot,
		sysRoot:  sysRoot,
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// FindAll collects every qualifying candidate for a reference: favicon
// extraction results first (for remote references), then user icon-theme
// matches, then system icon-theme matches. The two theme searches run
// concurrently but always land in that fixed order. Favicon extraction
// failures contribute zero candidates.
func (r *Resolver) FindAll(ctx context.Context, ref, fragment string) []Candidate {
	var out []Candidate

	if Classify(ref) == RefRemote && r.favicons != nil {
		paths, err := r.favicons.Download(ctx, ref)
		if err != nil {
			r.logger.Debug("favicon extraction yielded nothing",
				slog.String("url", ref),
				slog.String("error", err.Error()))
		}
		for _, p := range paths {
			out = append(out, Candidate{Path: p, IsFavicon: true})
		}
	}

	var userHits, sysHits []string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		userHits = SearchDir(ctx, r.userRoot, fragment, MinThemeSize)
	}()
	go func() {
		defer wg.Done()
		sysHits = SearchDir(ctx, r.sysRoot, fragment, MinThemeSize)
	}()
	wg.Wait()

	seen := make(map[string]struct{}, len(out))
	for _, c := range out {
		seen[c.Path] = struct{}{}
	}
	for _, p := range append(userHits, sysHits...) {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, Candidate{Path: p})
	}

	return out
}

// ResolveSingle resolves a reference to a single displayable icon, trying
// each acquisition strategy in order and short-circuiting on the first
// accepted result. A nil return means no source qualified anywhere in the
// chain, which is a normal outcome for input that is not an icon yet.
func (r *Resolver) ResolveSingle(ctx context.Context, ref string) *Icon {
	strategies := []func(context.Context, string) *Icon{
		r.fromRemote,
		r.fromLocal,
	}
	for _, try := range strategies {
		if ic := try(ctx, ref); ic != nil {
			return ic
		}
	}
	return nil
}

// fromRemote fetches the raw bytes behind a remote reference and runs them
// through the decoder gate. Unreachable hosts and non-success statuses fall
// through to the next strategy.
func (r *Resolver) fromRemote(ctx context.Context, ref string) *Icon {
	if Classify(ref) != RefRemote {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("direct fetch failed", slog.String("url", ref), slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil
	}

	dec, ok := DecodeAndCheck(data, MinDirectSize)
	if !ok {
		return nil
	}
	return &Icon{
		Kind:   dec.Kind,
		Source: ref,
		Data:   dec.Data,
		Width:  dec.Width,
		Height: dec.Height,
	}
}

// fromLocal resolves a reference as an existing file and runs its contents
// through the decoder gate at the direct-acquisition threshold.
func (r *Resolver) fromLocal(_ context.Context, ref string) *Icon {
	fi, err := os.Stat(ref)
	if err != nil || fi.IsDir() {
		return nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil
	}

	dec, ok := DecodeAndCheck(data, MinDirectSize)
	if !ok {
		return nil
	}
	return &Icon{
		Kind:   dec.Kind,
		Source: ref,
		Data:   dec.Data,
		Width:  dec.Width,
		Height: dec.Height,
	}
}
