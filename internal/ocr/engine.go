// Package ocr provides the text recognition boundary for rendered pages.
package ocr

// Engine recognizes text on a single rendered page image. Implementations
// are injected into the rasterizer so tests can substitute fakes.
type Engine interface {
	Recognize(imagePath string) (string, error)
}
