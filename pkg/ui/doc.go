// Package ui renders command output for terminals, plain text and JSON.
//
// Styles are declared in the embedded styles.yaml under semantic names
// (Header, Success, Warning, Error, Muted, Path, Key) and resolved to
// lipgloss styles with adaptive colors. Plain text and JSON output never
// carry escape sequences.
package ui
