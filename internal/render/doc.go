// Package render paints solar system scenes as raster images: standalone
// share stills and the per-frame output consumed by the video pipeline.
package render
