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

package shared

import (
	"github.com/charmbracelet/lipgloss"
)

// Severity tags a user-facing message.
type Severity string

const (
	SeverityOK      Severity = "OK"
	SeverityWarning Severity = "Warning"
	SeverityError   Severity = "Error"
)

type mark struct {
	style  lipgloss.Style
	symbol string
}

var marks = map[Severity]mark{
	SeverityOK:      {lipgloss.NewStyle().Foreground(lipgloss.Color("42")), "✓"},
	SeverityWarning: {lipgloss.NewStyle().Foreground(lipgloss.Color("214")), "⚠"},
	SeverityError:   {lipgloss.NewStyle().Foreground(lipgloss.Color("196")), "✗"},
}

var (
	// Header styles the doctor report title.
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Tag renders the "Warning:" or "Error:" prefix in its color.
func Tag(s Severity) string {
	return marks[s].style.Render(string(s) + ":")
}

// Render prefixes msg with the colored symbol for s.
func Render(s Severity, msg string) string {
	m := marks[s]
	return m.style.Render(m.symbol) + " " + msg
}

func RenderOK(msg string) string    { return Render(SeverityOK, msg) }
func RenderWarn(msg string) string  { return Render(SeverityWarning, msg) }
func RenderError(msg string) string { return Render(SeverityError, msg) }

// RenderLabel dims secondary text such as details and hints.
func RenderLabel(label string) string {
	return muted.Render(label)
}
