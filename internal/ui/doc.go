// Package ui styles command line output with lipgloss.
//
// [Palette] renders titles, success and failure marks, warnings and hints. Styles degrade to plain
// text when the output is not a terminal.
package ui
