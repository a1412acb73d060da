// Package source implements identedit's Source Loader: whole-file reads
// with BOM retention, NUL rejection, line-ending detection, and symlink
// rejection (spec.md 4.1).
package source

import (
	"bytes"
	"fmt"
	"os"

	"github.com/oxhq/identedit/internal/apperr"
)

// LineEnding names the line-ending style detected in a file (one style,
// none, or mixed when more than one style occurs), kept
// only so untouched regions can be preserved byte-for-byte; identedit never
// rewrites line endings on its own.
type LineEnding string

const (
	LF    LineEnding = "lf"
	CRLF  LineEnding = "crlf"
	CR    LineEnding = "cr"
	Mixed LineEnding = "mixed"
	None  LineEnding = "none" // no line endings present
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// File is a loaded source file: its raw bytes (BOM included if present)
// plus metadata the rest of the engine needs to preserve untouched regions.
type File struct {
	Path       string
	Content    []byte
	HasBOM     bool
	BOMLen     int
	LineEnding LineEnding
}

// Load reads path whole, rejecting symlinks, directories, and missing/
// unreadable files as io_error, and embedded NUL bytes as parse_failure.
func Load(path string) (*File, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, "reading file", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, apperr.New(apperr.IOError, fmt.Sprintf("%s: is a symbolic link", path))
	}
	if info.IsDir() {
		return nil, apperr.New(apperr.IOError, fmt.Sprintf("%s: is a directory", path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, "reading file", err)
	}

	if bytes.IndexByte(content, 0) >= 0 {
		return nil, apperr.New(apperr.ParseFailure, fmt.Sprintf("%s: contains embedded NUL byte", path))
	}

	f := &File{Path: path, Content: content}
	if bytes.HasPrefix(content, bom) {
		f.HasBOM = true
		f.BOMLen = len(bom)
	}
	f.LineEnding = detectLineEnding(content)
	return f, nil
}

// detectLineEnding reports the single line-ending style used in content,
// None when there is none, or Mixed when more than one style occurs.
func detectLineEnding(content []byte) LineEnding {
	var hasLF, hasCRLF, hasCR bool
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' {
			if i+1 < len(content) && content[i+1] == '\n' {
				hasCRLF = true
				i++
				continue
			}
			hasCR = true
			continue
		}
		if content[i] == '\n' {
			hasLF = true
		}
	}
	switch {
	case hasCRLF && !hasLF && !hasCR:
		return CRLF
	case hasLF && !hasCRLF && !hasCR:
		return LF
	case hasCR && !hasCRLF && !hasLF:
		return CR
	case !hasLF && !hasCRLF && !hasCR:
		return None
	default:
		return Mixed
	}
}

// BodyOffset is the byte offset at which content begins after any BOM; the
// first post-BOM node's span therefore starts at this offset (3 when a BOM
// is present).
func (f *File) BodyOffset() int {
	return f.BOMLen
}
