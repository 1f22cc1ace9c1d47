// Copyright 2025 Tom Barlow
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

// Package format renders structured text for the terminal.
package format

import (
	"bytes"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

const (
	highlightFormatter = "terminal256"
	highlightStyle     = "monokai"

	// maxHighlightSize is the largest input that gets highlighted.
	maxHighlightSize = 2 * 1024 * 1024
)

// Highlight applies syntax highlighting for language when color is true.
// Unknown languages, oversized input and highlighter failures return content
// unchanged.
func Highlight(content, language string, color bool) string {
	if !color || len(content) > maxHighlightSize {
		return content
	}
	if lexers.Get(language) == nil {
		return content
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, language, highlightFormatter, highlightStyle); err != nil {
		return content
	}
	return buf.String()
}
