package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pitchctl/internal/pitch"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stageLabel turns an enum name such as GEN_TRANSCRIPT into "Gen Transcript".
func stageLabel(name string) string {
	words := strings.ReplaceAll(strings.ToLower(name), "_", " ")
	return cases.Title(language.Und).String(words)
}

func transcriptionStatusLine(stage pitch.TranscriptionStage, colorize bool) string {
	kind := statusInfo
	if stage.Terminal() {
		kind = statusOK
	}
	message := fmt.Sprintf("%s (%d/%d)", stageLabel(stage.String()), int(stage)+1, int(pitch.StageTranscriptionFinish)+1)
	return renderStatusLine("Transcription", kind, message, colorize)
}

func synthesisStatusLine(stage pitch.SynthesisStage, taskID string, colorize bool) string {
	kind := statusInfo
	switch {
	case stage.Failed():
		kind = statusError
	case stage.Terminal():
		kind = statusOK
	}
	message := stageLabel(stage.String())
	if taskID != "" {
		message += " task " + taskID
	}
	return renderStatusLine("Synthesis", kind, message, colorize)
}
