// Package imaging loads image files into single-channel intensity frames and
// provides the frame operations the streak pipeline needs.
//
// A Frame keeps the native sample range of its source (0-255 or 0-65535).
// Color images are reduced to a weighted gray value; grayscale images keep
// their raw values.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Rotation angles are in degrees, counter-clockwise as the image is viewed.
//
// # Thread Safety
//
// Frames are never mutated after they are built, so they can be shared
// between goroutines. The FrameCache type is safe for concurrent use.
//
// # Error Handling
//
// LoadFrame returns an image_read AppError for files that cannot be opened or
// decoded. Crop and sub-frame operations reject rectangles outside the frame.
//
// # Performance Considerations
//
// For repeated operations on the same image, use FrameCache to avoid redundant
// disk reads. Samples are stored as float64, so a cached frame costs eight
// bytes per pixel. Use Evict() or Clear() to manage memory for long-running
// processes.
package imaging
