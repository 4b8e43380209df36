package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how a Printer renders output
type Format string

const (
	FormatAuto     Format = "auto"
	FormatTerminal Format = "terminal"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

var formatNames = map[string]Format{
	"":         FormatAuto,
	"auto":     FormatAuto,
	"term":     FormatTerminal,
	"terminal": FormatTerminal,
	"text":     FormatText,
	"plain":    FormatText,
	"json":     FormatJSON,
}

// ParseFormat maps a --format value, case-insensitively, to a Format
func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[strings.ToLower(s)]
	if !ok {
		return "", fmt.Errorf("unknown format %q, expected auto, terminal, text or json", s)
	}
	return f, nil
}

// Detect returns FormatTerminal when f is a terminal whose environment
// allows colour. NO_COLOR and dumb terminals give FormatText.
func Detect(f *os.File) Format {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(f).EnvColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Printer writes labelled output in one format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer writing to w. FormatAuto is resolved
// against tty, the file w ends up on.
func NewPrinter(w io.Writer, format Format, tty *os.File) *Printer {
	if format == FormatAuto {
		format = Detect(tty)
	}
	return &Printer{w: w, format: format}
}

// Format returns the printer's resolved format
func (p *Printer) Format() Format {
	return p.format
}

// Header prints a section title
func (p *Printer) Header(title string) {
	_, _ = fmt.Fprintln(p.w, Render(p.format, "Header", title))
}

// Field prints a key and its value
func (p *Printer) Field(key, value string) {
	if p.format == FormatTerminal {
		_, _ = fmt.Fprintf(p.w, "%s %s\n", GetStyle("Key").Render(key), value)
		return
	}
	_, _ = fmt.Fprintf(p.w, "%-16s %s\n", key, value)
}

// Line prints text with the named style
func (p *Printer) Line(style, text string) {
	_, _ = fmt.Fprintln(p.w, Render(p.format, style, text))
}

// JSON prints v as indented JSON
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
