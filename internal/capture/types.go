// internal/capture/types.go
package capture

import "time"

// Format identifies the encoded image format of a capture.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ValidFormats returns all recognized capture formats.
func ValidFormats() []Format {
	return []Format{FormatPNG, FormatJPEG, FormatWebP}
}

// IsValid checks whether the format is one of the recognized tokens.
func (f Format) IsValid() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatWebP:
		return true
	}
	return false
}

// Lossy reports whether the format honors a quality setting.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/png"
	}
}

// Request is a fully validated capture request. A Request that exists
// has already passed every bounds and protocol check; it is never
// constructed partially validated. Build one with ParseRequest.
type Request struct {
	URL      string
	Width    int
	Height   int
	Format   Format
	Quality  int
	Delay    time.Duration
	FullPage bool
	Mobile   bool
	DarkMode bool
	Selector string
}

// Result is the terminal value of a successful capture: the encoded
// image plus derived metadata. It is written once and never mutated.
type Result struct {
	Image   []byte
	Format  Format
	Width   int
	Height  int
	Title   string
	Elapsed time.Duration
}

// Size returns the encoded image length in bytes.
func (r *Result) Size() int {
	return len(r.Image)
}
