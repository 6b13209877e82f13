package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pitchctl/internal/sessionstore"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage saved sessions",
	}
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionResetCommand(ctx))
	return sessionCmd
}

type sessionView struct {
	Name                string                    `json:"name"`
	PitchID             string                    `json:"pitch_id,omitempty"`
	TranscriptionTaskID string                    `json:"transcription_task_id,omitempty"`
	SynthesisTaskID     string                    `json:"synthesis_task_id,omitempty"`
	Chapters            int                       `json:"chapters"`
	Documents           int                       `json:"documents"`
	History             []sessionstore.StageEntry `json:"history,omitempty"`
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current session and its stage history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				state := rt.session.State()
				history, err := rt.store.History(rt.ctx, rt.name)
				if err != nil {
					return err
				}
				view := sessionView{
					Name:                rt.name,
					PitchID:             state.PitchID,
					TranscriptionTaskID: state.TranscriptionTaskID,
					SynthesisTaskID:     state.SynthesisTaskID,
					Chapters:            len(rt.session.Transcript()),
					Documents:           len(rt.session.Documents()),
					History:             history,
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				if state.PitchID == "" {
					fmt.Fprintf(out, "Session %s has no active pitch\n", rt.name)
					return nil
				}
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "Session %s:\n", rt.name)
				fmt.Fprintln(out, renderStatusLine("Pitch", statusInfo, state.PitchID, colorize))
				fmt.Fprintln(out, renderStatusLine("Transcription", statusInfo, valueOrDash(state.TranscriptionTaskID), colorize))
				fmt.Fprintln(out, renderStatusLine("Synthesis", statusInfo, valueOrDash(state.SynthesisTaskID), colorize))
				fmt.Fprintln(out, renderStatusLine("Transcript", statusInfo, fmt.Sprintf("%d chapters cached", view.Chapters), colorize))
				fmt.Fprintln(out, renderStatusLine("Documents", statusInfo, fmt.Sprintf("%d cached", view.Documents), colorize))
				if len(history) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(history))
				for _, entry := range history {
					rows = append(rows, []string{
						entry.ObservedAt.Local().Format(time.DateTime),
						string(entry.Pipeline),
						valueOrDash(entry.TaskID),
						strconv.Itoa(entry.Code),
						entry.Stage,
					})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, renderTable(
					[]string{"Observed", "Pipeline", "Task", "Code", "Stage"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved sessions, most recently used first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				records, err := rt.store.List(rt.ctx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					views := make([]sessionView, 0, len(records))
					for _, record := range records {
						views = append(views, sessionView{
							Name:                record.Name,
							PitchID:             record.Snapshot.State.PitchID,
							TranscriptionTaskID: record.Snapshot.State.TranscriptionTaskID,
							SynthesisTaskID:     record.Snapshot.State.SynthesisTaskID,
							Chapters:            len(record.Snapshot.Transcript),
							Documents:           len(record.Snapshot.Documents),
						})
					}
					return writeJSON(cmd, views)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					name := record.Name
					if name == rt.name {
						name += " *"
					}
					rows = append(rows, []string{
						name,
						record.Snapshot.State.PitchID,
						valueOrDash(record.Snapshot.State.SynthesisTaskID),
						humanize.Time(record.UpdatedAt),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Session", "Pitch", "Synthesis", "Updated"}, rows, nil))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func newSessionResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the current session's pitch and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opened directly: withSession would save the snapshot back after deletion.
			rt, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			removed, err := rt.store.Delete(rt.ctx, rt.name)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"session": rt.name, "removed": removed})
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s had nothing saved\n", rt.name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s reset\n", rt.name)
			return nil
		},
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
