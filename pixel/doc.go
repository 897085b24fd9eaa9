// Package pixel implements the 1-bit color model and image layout used by
// page addressed monochrome LCD controllers.
//
// The types are compatible with Go's native [color.Color] and [draw.Image]
// interfaces, so the standard library and golang.org/x/image can draw onto a
// display framebuffer directly.
package pixel
