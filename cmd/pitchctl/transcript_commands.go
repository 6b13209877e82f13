package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pitchctl/internal/fileutil"
	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	transcriptCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Fetch, edit, and save the pitch transcript",
	}
	transcriptCmd.AddCommand(newTranscriptGetCommand(ctx))
	transcriptCmd.AddCommand(newTranscriptPutCommand(ctx))
	transcriptCmd.AddCommand(newTranscriptEditCommand(ctx))
	return transcriptCmd
}

func newTranscriptGetCommand(ctx *commandContext) *cobra.Command {
	var output string
	var cached bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch the transcript from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, !cached, func(rt *sessionRuntime) error {
				var transcript pitch.Transcript
				if cached {
					transcript = rt.session.Transcript()
				} else {
					fetched, err := rt.session.FetchTranscript(rt.ctx)
					if err != nil {
						return err
					}
					transcript = fetched
				}

				if output != "" {
					data, err := encodeTranscript(transcript)
					if err != nil {
						return err
					}
					if err := fileutil.WriteFileVerified(output, data, 0o644); err != nil {
						return fmt.Errorf("write transcript: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d chapters to %s\n", len(transcript), output)
					return nil
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, transcript)
				}
				if len(transcript) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Transcript is empty")
					return nil
				}
				rows := make([][]string, 0, len(transcript))
				for i, chapter := range transcript {
					rows = append(rows, []string{strconv.Itoa(i + 1), compactChapter(chapter)})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"#", "Chapter"}, rows, []columnAlignment{alignRight, alignLeft}))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the transcript JSON to this file")
	cmd.Flags().BoolVar(&cached, "cached", false, "Show the locally cached transcript without contacting the backend")
	return cmd
}

func newTranscriptPutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "put [file|-]",
		Short: "Save a transcript to the backend",
		Long: "Save a transcript to the backend.\n\n" +
			"The file holds either a JSON array of chapters or an object with a\n" +
			"\"transcripts\" array. Without a file the locally edited transcript is sent.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edits pitch.Transcript
			fromFile := len(args) == 1
			if fromFile {
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				edits, err = parseTranscript(data)
				if err != nil {
					return err
				}
			}

			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				if !fromFile {
					edits = rt.session.Transcript()
				}
				saved, err := rt.session.SaveTranscript(rt.ctx, edits)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, saved)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved transcript: sent %d chapters, backend holds %d\n", len(edits), len(saved))
				return nil
			})
		},
	}
}

func newTranscriptEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file|->",
		Short: "Replace the locally cached transcript without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			edits, err := parseTranscript(data)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				if rt.session.PitchID() == "" {
					return services.Wrap(services.ErrPrecondition, "cli", "edit transcript", "no active pitch", nil)
				}
				rt.session.EditTranscript(edits)
				fmt.Fprintf(cmd.OutOrStdout(), "Cached %d chapters locally; run `pitchctl transcript put` to save\n", len(edits))
				return nil
			})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "read input", "", err)
	}
	return data, nil
}

// parseTranscript accepts a bare chapter array or {"transcripts": [...]}.
func parseTranscript(data []byte) (pitch.Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, services.Wrap(services.ErrValidation, "cli", "parse transcript", "input is empty", nil)
	}
	var transcript pitch.Transcript
	if trimmed[0] == '{' {
		var wrapper struct {
			Transcripts *pitch.Transcript `json:"transcripts"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse transcript", "", err)
		}
		if wrapper.Transcripts == nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse transcript", "object has no transcripts array", nil)
		}
		transcript = *wrapper.Transcripts
	} else if err := json.Unmarshal(trimmed, &transcript); err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "parse transcript", "expected a JSON array of chapters", err)
	}
	return transcript.Clone(), nil
}

func encodeTranscript(t pitch.Transcript) ([]byte, error) {
	if t == nil {
		t = pitch.Transcript{}
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return append(data, '\n'), nil
}

func compactChapter(chapter pitch.Chapter) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, chapter); err != nil {
		return strings.TrimSpace(string(chapter))
	}
	return buf.String()
}
