// Package logging provides leveled, colored console output with optional
// logfile mirroring.
package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"vidgrab/internal/domain/consts"
)

var (
	// Level gates debug output: D(l, ...) prints when l <= Level.
	Level int

	mu      sync.Mutex
	logFile io.Writer
)

// ANSI escape codes, stripped before logfile writes.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// SetFile mirrors all subsequent output into w.
func SetFile(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logFile = w
}

// E prints an error message with caller information.
func E(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit(consts.RedError + sprintf(format, args...) + callerTag(2) + "\n")
}

// W prints a warning message.
func W(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit(consts.YellowWarn + sprintf(format, args...) + "\n")
}

// S prints a success message.
func S(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit(consts.GreenSuccess + sprintf(format, args...) + "\n")
}

// I prints an informational message.
func I(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit(consts.BlueInfo + sprintf(format, args...) + "\n")
}

// D prints a debug message with caller information when l <= Level.
func D(l int, format string, args ...any) {
	if l > Level {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	emit(consts.YellowDebug + sprintf(format, args...) + callerTag(2) + "\n")
}

// P prints a plain message with no tag, used for mirroring subprocess lines.
func P(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit(sprintf(format, args...) + "\n")
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func callerTag(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	var b strings.Builder
	b.WriteString(" [")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Function: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(funcName)
	b.WriteString(" - ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("File: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(filepath.Base(file))
	b.WriteString(" : ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Line: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(strconv.Itoa(line))
	b.WriteString("]")
	return b.String()
}

func emit(msg string) {
	fmt.Print(msg)
	if logFile != nil {
		fmt.Fprint(logFile, ansiEscape.ReplaceAllString(msg, ""))
	}
}
