package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"splicer/internal/deps"
	"splicer/internal/preflight"
)

// statusLevel grades one line of `splicer status`.
type statusLevel struct {
	label string
	color text.Color
}

var (
	levelInfo  = statusLevel{"INFO", text.FgBlue}
	levelOK    = statusLevel{"OK", text.FgGreen}
	levelWarn  = statusLevel{"WARN", text.FgYellow}
	levelError = statusLevel{"ERROR", text.FgRed}
)

const statusLabelWidth = 22

func renderStatusLine(name string, level statusLevel, message string, colorize bool) string {
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, name+":", level.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return level.color.Sprint(line)
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	lines := []string{heading, strings.Repeat("-", len(heading))}
	if colorize {
		for i := range lines {
			lines[i] = levelInfo.color.Sprint(lines[i])
		}
	}
	return lines
}

// failureLevel grades a failed check: optional checks only warn.
func failureLevel(optional bool) statusLevel {
	if optional {
		return levelWarn
	}
	return levelError
}

func resultStatusLine(result preflight.Result, optional, colorize bool) string {
	level := levelOK
	if !result.Passed {
		level = failureLevel(optional)
	}
	return renderStatusLine(result.Name, level, result.Detail, colorize)
}

func dependencyStatusLine(status deps.Status, colorize bool) string {
	if !status.Available {
		return renderStatusLine(status.Name, failureLevel(status.Optional), status.Detail, colorize)
	}
	message := status.Path
	if message == "" {
		message = status.Command
	}
	if status.Description != "" {
		message += " (" + status.Description + ")"
	}
	return renderStatusLine(status.Name, levelOK, message, colorize)
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
