package errors

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
)

// DefaultContextLines is the number of lines shown before and after the
// offending line.
const DefaultContextLines = 2

// Excerpt renders the lines of source surrounding loc, marking the
// offending line and column.
func Excerpt(source []byte, loc ast.Location, contextLines int) string {
	if loc.Line <= 0 || len(source) == 0 {
		return ""
	}
	lines := strings.Split(string(bytes.TrimRight(source, "\n")), "\n")
	errorLine := loc.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	start := max(errorLine-contextLines, 0)
	end := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", end+1))
	for i := start; i <= end; i++ {
		marker := "  "
		if i == errorLine {
			marker = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", marker, width, i+1, lines[i]))
		if i == errorLine && loc.Column > 0 {
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", loc.Column-1)))
		}
	}
	return sb.String()
}

// ExtractContext reads the file named by loc and renders its excerpt.
// Unreadable files yield an empty context.
func ExtractContext(loc ast.Location, contextLines int) string {
	if !loc.IsValid() {
		return ""
	}
	data, err := os.ReadFile(loc.File)
	if err != nil {
		return ""
	}
	return Excerpt(data, loc, contextLines)
}

// AddContext fills the Context of err, or of every entry of an ErrorList,
// from the source files they point at. Other errors are returned unchanged.
func AddContext(err error) error {
	switch e := err.(type) {
	case *Error:
		if e.Context == "" {
			e.Context = ExtractContext(e.Location, DefaultContextLines)
		}
	case *ErrorList:
		for _, item := range e.Errors {
			AddContext(item)
		}
	}
	return err
}
