package icon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	paths []string
	err   error
	calls int
}

func (s *stubFetcher) Download(_ context.Context, _ string) ([]string, error) {
	s.calls++
	return s.paths, s.err
}

func TestResolveSingleRemote(t *testing.T) {
	large := pngBytes(t, 128, 128)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/icon.png":
			w.Write(large) //nolint:errcheck
		case "/small.png":
			w.Write(pngBytes(t, 32, 32)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewResolver(nil, t.TempDir(), t.TempDir(), testLogger())

	ic := r.ResolveSingle(context.Background(), srv.URL+"/icon.png")
	if ic == nil {
		t.Fatal("qualifying remote icon not resolved")
	}
	if ic.Kind != KindRaster || ic.Width != 128 || ic.Height != 128 {
		t.Errorf("resolved %v %dx%d, want raster 128x128", ic.Kind, ic.Width, ic.Height)
	}
	if ic.IsFavicon {
		t.Error("direct fetch flagged as favicon")
	}
	if ic.Source != srv.URL+"/icon.png" {
		t.Errorf("Source = %q", ic.Source)
	}

	if ic := r.ResolveSingle(context.Background(), srv.URL+"/small.png"); ic != nil {
		t.Error("sub-threshold remote icon resolved")
	}
	if ic := r.ResolveSingle(context.Background(), srv.URL+"/missing.png"); ic != nil {
		t.Error("404 response resolved")
	}
}

func TestResolveSingleLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.png")
	if err := os.WriteFile(path, pngBytes(t, 128, 128), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(nil, dir, dir, testLogger())

	ic := r.ResolveSingle(context.Background(), path)
	if ic == nil {
		t.Fatal("qualifying local icon not resolved")
	}
	if ic.Kind != KindRaster {
		t.Errorf("Kind = %v, want raster", ic.Kind)
	}

	if ic := r.ResolveSingle(context.Background(), filepath.Join(dir, "missing.png")); ic != nil {
		t.Error("missing file resolved")
	}
	if ic := r.ResolveSingle(context.Background(), dir); ic != nil {
		t.Error("directory resolved")
	}
}

func TestFindAllOrder(t *testing.T) {
	userRoot := t.TempDir()
	sysRoot := t.TempDir()
	large := pngBytes(t, 128, 128)

	userHit := filepath.Join(userRoot, "myapp.png")
	sysHit := filepath.Join(sysRoot, "myapp.svg")
	writeFile(t, userHit, large)
	writeFile(t, sysHit, svgBytes(256, 256))

	favDir := t.TempDir()
	favHit := filepath.Join(favDir, "cached.ico")
	writeFile(t, favHit, large)
	fetcher := &stubFetcher{paths: []string{favHit}}

	r := NewResolver(fetcher, userRoot, sysRoot, testLogger())

	got := r.FindAll(context.Background(), "https://myapp.example.com", "myapp")
	if len(got) != 3 {
		t.Fatalf("FindAll returned %d candidates %v, want 3", len(got), got)
	}
	if got[0].Path != favHit || !got[0].IsFavicon {
		t.Errorf("candidate 0 = %+v, want favicon %s", got[0], favHit)
	}
	if got[1].Path != userHit || got[1].IsFavicon {
		t.Errorf("candidate 1 = %+v, want user hit %s", got[1], userHit)
	}
	if got[2].Path != sysHit || got[2].IsFavicon {
		t.Errorf("candidate 2 = %+v, want system hit %s", got[2], sysHit)
	}
	if fetcher.calls != 1 {
		t.Errorf("favicon fetcher called %d times, want 1", fetcher.calls)
	}
}

// Local references skip favicon extraction entirely.
func TestFindAllLocalRef(t *testing.T) {
	fetcher := &stubFetcher{paths: []string{"/should/not/appear"}}
	r := NewResolver(fetcher, t.TempDir(), t.TempDir(), testLogger())

	got := r.FindAll(context.Background(), "/some/local/path.png", "myapp")
	if fetcher.calls != 0 {
		t.Errorf("favicon fetcher called for a local reference")
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestFindAllFetcherError(t *testing.T) {
	userRoot := t.TempDir()
	hit := filepath.Join(userRoot, "myapp.png")
	writeFile(t, hit, pngBytes(t, 128, 128))

	fetcher := &stubFetcher{err: io.ErrUnexpectedEOF}
	r := NewResolver(fetcher, userRoot, t.TempDir(), testLogger())

	got := r.FindAll(context.Background(), "https://myapp.example.com", "myapp")
	if len(got) != 1 || got[0].Path != hit {
		t.Fatalf("FindAll = %v, want just the theme hit", got)
	}
}
