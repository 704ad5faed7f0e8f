package icon

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/vincent-petithory/dataurl"

	"github.com/sydlexius/quickwebapps/internal/filesystem"
)

// svgWrapper is the canonical on-disk format: a minimal vector document
// whose declared dimensions match the embedded bitmap.
const svgWrapper = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><image x="0" y="0" width="%d" height="%d" href="%s"/></svg>
`

// Normalizer converts accepted raster icons into the canonical vector
// format and persists them under the application icon directory.
type Normalizer struct {
	dir    string
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer writing into dir.
func NewNormalizer(dir string, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		dir:    dir,
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Sanitize strips space characters from a display name. Deliberately
// narrow: the destination directory is fixed and user-owned.
func Sanitize(displayName string) string {
	return strings.ReplaceAll(displayName, " ", "")
}

// Path returns the deterministic destination for a display name.
func (n *Normalizer) Path(displayName string) string {
	return filepath.Join(n.dir, Sanitize(displayName)+".svg")
}

// Normalize re-encodes raster bytes as PNG, embeds them as a base64 data
// URI inside the vector wrapper, and writes the wrapper to the destination
// for displayName. The same name always maps to the same path, so a second
// resolution overwrites the first. Unlike acquisition failures, a write
// failure here is fatal to the call: a launcher entry cannot be finished
// without its icon file.
func (n *Normalizer) Normalize(data []byte, displayName string) (string, error) {
	img, err := decodeRaster(data)
	if err != nil {
		return "", fmt.Errorf("decoding raster icon: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	doc := fmt.Sprintf(svgWrapper, w, h, w, h, dataurl.EncodeBytes(buf.Bytes()))

	dest := n.Path(displayName)
	if err := filesystem.WriteFileAtomic(dest, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}

	n.logger.Debug("normalized icon",
		slog.String("path", dest),
		slog.Int("width", w),
		slog.Int("height", h))

	return dest, nil
}

// WriteVector installs already-vector bytes at the destination for
// displayName without re-wrapping them.
func (n *Normalizer) WriteVector(data []byte, displayName string) (string, error) {
	dest := n.Path(displayName)
	if err := filesystem.WriteFileAtomic(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

// CopyVector installs an already-vector local source at the destination for
// displayName without re-wrapping it.
func (n *Normalizer) CopyVector(srcPath, displayName string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", srcPath, err)
	}
	return n.WriteVector(data, displayName)
}
