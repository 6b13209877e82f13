package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

func openUpload(path string, keywords []string) (pitch.Upload, *os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return pitch.Upload{}, nil, services.Wrap(services.ErrValidation, "cli", "open upload", "file path is empty", nil)
	}
	file, err := os.Open(path)
	if err != nil {
		return pitch.Upload{}, nil, services.Wrap(services.ErrValidation, "cli", "open upload", "", err)
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return pitch.Upload{}, nil, services.Wrap(services.ErrValidation, "cli", "open upload", fmt.Sprintf("%s is not a regular file", path), err)
	}
	return pitch.Upload{Filename: filepath.Base(path), Content: file, Keywords: keywords}, file, nil
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var keywords []string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a master document and start a new pitch",
		Long: "Upload a master document and start a new pitch.\n\n" +
			"The current session switches to the new pitch; its cached transcript\n" +
			"and reference documents are discarded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, file, err := openUpload(args[0], keywords)
			if err != nil {
				return err
			}
			defer file.Close()

			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				result, err := rt.session.StartPitch(rt.ctx, upload)
				if err != nil {
					return err
				}
				masterURL, _ := rt.session.MasterDocumentURL()
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{
						"session":               rt.name,
						"pitch_id":              result.PitchID,
						"transcription_task_id": result.TranscriptionTaskID,
						"master_document_url":   masterURL,
					})
				}
				out := cmd.OutOrStdout()
				if info, err := file.Stat(); err == nil {
					fmt.Fprintf(out, "Uploaded %s (%s)\n", upload.Filename, humanize.Bytes(uint64(info.Size())))
				}
				fmt.Fprintf(out, "Pitch %s started (session %s)\n", result.PitchID, rt.name)
				if result.TranscriptionTaskID != "" {
					fmt.Fprintf(out, "Transcription task: %s\n", result.TranscriptionTaskID)
				}
				fmt.Fprintf(out, "Master document: %s\n", masterURL)
				fmt.Fprintln(out, "Follow progress with `pitchctl status --wait`.")
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&keywords, "keyword", "k", nil, "Keyword metadata to attach (repeatable)")
	return cmd
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				if err := rt.session.ResumeTranscription(rt.ctx); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"pitch_id": rt.session.PitchID(), "resumed": true})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcription resumed for pitch %s\n", rt.session.PitchID())
				return nil
			})
		},
	}
}

func newURLsCommand(ctx *commandContext) *cobra.Command {
	var videoName string

	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Show resource URLs for the current pitch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				masterURL, err := rt.session.MasterDocumentURL()
				if err != nil {
					return err
				}
				streamURL, err := rt.session.StreamingURL()
				if err != nil {
					return err
				}
				urls := [][]string{
					{"Master document", masterURL},
					{"Streaming", streamURL},
				}
				if strings.TrimSpace(videoName) != "" {
					videoURL, err := rt.session.VideoURL(videoName)
					if err != nil {
						return err
					}
					urls = append(urls, []string{"Video", videoURL})
				}

				if ctx.jsonOutput() {
					payload := map[string]string{"pitch_id": rt.session.PitchID()}
					for _, row := range urls {
						payload[strings.ReplaceAll(strings.ToLower(row[0]), " ", "_")+"_url"] = row[1]
					}
					return writeJSON(cmd, payload)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Resource", "URL"}, urls, nil))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&videoName, "video", "", "Also show the URL of this rendered video (e.g. out.mp4)")
	return cmd
}
