package icon

import (
	"embed"
	"fmt"
	"image"
	"sync"
)

//go:embed assets/*.svg
var bundled embed.FS

// Handle is a materialized, displayable rendering of a bundled UI icon at a
// fixed pixel size.
type Handle struct {
	Name  string
	Size  int
	Image *image.RGBA
}

type handleKey struct {
	name string
	size int
}

// handleCache maps (name, size) to already-materialized handles. Entries
// live for the process lifetime; the key space is the small fixed set of
// bundled UI icon names at a handful of render sizes, so growth is bounded
// and eviction is unnecessary.
type handleCache struct {
	mu      sync.Mutex
	handles map[handleKey]*Handle
}

var (
	cacheOnce sync.Once
	cache     *handleCache
)

// CacheGet returns the handle for a bundled icon at the given render size,
// materializing and caching it on first use. Safe for concurrent use from
// rendering callbacks; the lock is held only for the get-or-insert, the
// actual rasterization included, never across network or unbounded disk
// work. Results from icon acquisition never enter this cache.
func CacheGet(name string, size int) (*Handle, error) {
	cacheOnce.Do(func() {
		cache = &handleCache{handles: make(map[handleKey]*Handle)}
	})

	cache.mu.Lock()
	defer cache.mu.Unlock()

	key := handleKey{name: name, size: size}
	if h, ok := cache.handles[key]; ok {
		return h, nil
	}

	data, err := bundled.ReadFile("assets/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("no bundled icon %q: %w", name, err)
	}
	img, err := RenderSVG(data, size)
	if err != nil {
		return nil, fmt.Errorf("rendering bundled icon %q: %w", name, err)
	}

	h := &Handle{Name: name, Size: size, Image: img}
	cache.handles[key] = h
	return h, nil
}
