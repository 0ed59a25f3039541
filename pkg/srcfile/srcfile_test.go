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

package srcfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "single_line_with_terminator",
			text: "hello\n",
			want: []string{"hello\n"},
		},
		{
			name: "single_line_without_terminator",
			text: "hello",
			want: []string{"hello"},
		},
		{
			name: "mixed_terminators_kept",
			text: "a\r\nb\nc",
			want: []string{"a\r\n", "b\n", "c"},
		},
		{
			name: "blank_lines_kept",
			text: "a\n\nb\n",
			want: []string{"a\n", "\n", "b\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.text), "lines should match")
		})
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		content      []byte
		wantEncoding Encoding
	}{
		{
			name:         "utf8",
			content:      []byte("package main\n\n// héllo\n"),
			wantEncoding: EncodingUTF8,
		},
		{
			name:         "utf8_crlf",
			content:      []byte("line one\r\nline two\r\n"),
			wantEncoding: EncodingUTF8,
		},
		{
			// 0xE9 is é in Latin-1 and invalid as a UTF-8 start byte here
			name:         "latin1_fallback",
			content:      []byte{'c', 'a', 'f', 0xE9, '\n'},
			wantEncoding: EncodingLatin1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "src.txt")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644), "writing fixture")

			file, err := Read(path)
			require.NoError(t, err, "read should succeed")
			assert.Equal(t, tt.wantEncoding, file.Encoding, "detected encoding should match")

			require.NoError(t, file.Write(), "write should succeed")

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, after, "round trip must be byte identical")
		})
	}
}

func TestWritePreservesEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.py")
	require.NoError(t, os.WriteFile(path, []byte("import sys\n"), 0o644))

	file, err := Read(path)
	require.NoError(t, err)

	file.Lines = append([]string{"# header\n"}, file.Lines...)
	require.NoError(t, file.Write())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# header\nimport sys\n", string(after), "edited content should be persisted")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err, "missing file should fail")
}
