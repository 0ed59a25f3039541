// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package srcfile reads and rewrites source files as line sequences, keeping
// each line's own terminator and the file's encoding intact across the round
// trip. UTF-8 is tried first, with a Latin-1 fallback for legacy files.
package srcfile

import (
	"os"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding/charmap"
)

// ErrEncoding marks files that neither supported encoding could handle.
var ErrEncoding = errors.Base("file encoding is not supported")

// Encoding identifies the text encoding a file was decoded with.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// File is a source file split into lines, each retaining its terminator.
type File struct {
	Path     string
	Lines    []string
	Encoding Encoding

	mode os.FileMode
}

// Read loads path, decoding as UTF-8 when valid and falling back to Latin-1
// otherwise.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", path, err)
	}

	text := string(data)
	enc := EncodingUTF8
	if !utf8.ValidString(text) {
		decoded, err := charmap.ISO8859_1.NewDecoder().String(text)
		if err != nil {
			return nil, errors.Errorf("%w: %s", ErrEncoding, path)
		}
		text = decoded
		enc = EncodingLatin1
	}

	return &File{
		Path:     path,
		Lines:    SplitLines(text),
		Encoding: enc,
		mode:     info.Mode().Perm(),
	}, nil
}

// Write persists the file's current lines back to disk through the encoding
// it was read with.
func (f *File) Write() error {
	text := strings.Join(f.Lines, "")

	if f.Encoding == EncodingLatin1 {
		encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
		if err != nil {
			return errors.Errorf("%w: re-encoding %s: %v", ErrEncoding, f.Path, err)
		}
		text = encoded
	}

	mode := f.mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.WriteFile(f.Path, []byte(text), mode); err != nil {
		return errors.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}

// SplitLines splits text after every newline, keeping terminators. A final
// chunk without a terminator is kept as its own line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			return lines
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
		if text == "" {
			return lines
		}
	}
}
