package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
)

// LoadFrame reads and decodes one image file into a Frame.
//
// Parameters:
//   - path: Path to the image file. Supported formats are PNG, JPEG, GIF,
//     TIFF and BMP.
//
// Returns:
//   - *Frame: The channel-reduced intensity grid.
//   - error: An *errors.AppError of type image_read if the file cannot be
//     opened or decoded. The batch treats this as a per-file failure.
func LoadFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewImageReadError(path, fmt.Errorf("failed to open image: %w", err))
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.NewImageReadError(path, fmt.Errorf("failed to decode image: %w", err))
	}

	frame := FromImage(img)
	if frame.Width == 0 || frame.Height == 0 {
		return nil, apperrors.NewImageReadError(path, fmt.Errorf("image has no pixels"))
	}
	return frame, nil
}

// FrameCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads across MCP tool calls.
//
// FrameCache is safe for concurrent use by multiple goroutines. The batch
// pipeline does not use it: every file there is read exactly once.
//
// # Memory Management
//
// Cached frames remain in memory until explicitly removed via Evict() or
// Clear(). A 16-bit 4096x4096 frame costs 128 MiB as float64 samples.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]*Frame
}

// NewFrameCache creates and initializes a new empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]*Frame),
	}
}

// Load retrieves a frame from the cache or loads it from disk if not cached.
//
// The frame is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *FrameCache) Load(path string) (*Frame, error) {
	c.mu.RLock()
	if frame, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return frame, nil
	}
	c.mu.RUnlock()

	frame, err := LoadFrame(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[path] = frame
	c.mu.Unlock()

	return frame, nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "tiff",
	// "bmp", or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// BitDepth is 8 or 16.
	BitDepth int `json:"bit_depth"`

	// MinIntensity and MaxIntensity bound the channel-reduced samples.
	MinIntensity float64 `json:"min_intensity"`
	MaxIntensity float64 `json:"max_intensity"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads a frame through the cache and returns metadata about it.
func LoadImageInfo(cache *FrameCache, path string) (*ImageInfo, error) {
	frame, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	lo, hi := frame.MinMax()
	return &ImageInfo{
		Width:         frame.Width,
		Height:        frame.Height,
		Format:        FormatFromExt(path),
		BitDepth:      frame.BitDepth,
		MinIntensity:  lo,
		MaxIntensity:  hi,
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatFromExt maps a file extension to a format name.
func FormatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	}
	return "unknown"
}
