package library

import (
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Decode returns reader producing UTF-8 text. Old library files are often
// stored in 8-bit code pages, encoding is detected from byte order mark or
// content.
func Decode(r io.Reader) (io.Reader, error) {
	dr, err := charset.NewReader(r, "text/plain")
	if err != nil {
		return nil, fmt.Errorf("unable to detect file encoding: %w", err)
	}
	return dr, nil
}
