package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pitchctl/internal/logging"
	"pitchctl/internal/pitch"
	"pitchctl/internal/watch"
)

type stageReport struct {
	Pipeline string `json:"pipeline"`
	Stage    string `json:"stage"`
	Code     int    `json:"code"`
	TaskID   string `json:"task_id,omitempty"`
	Terminal bool   `json:"terminal"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var interval, timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the transcription stage of the current pitch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				colorize := shouldColorize(cmd.OutOrStdout())
				report := func(stage pitch.TranscriptionStage) error {
					if ctx.jsonOutput() {
						return writeJSON(cmd, stageReport{
							Pipeline: string(pitch.PipelineTranscription),
							Stage:    stage.String(),
							Code:     int(stage),
							Terminal: stage.Terminal(),
						})
					}
					fmt.Fprintln(cmd.OutOrStdout(), transcriptionStatusLine(stage, colorize))
					return nil
				}

				if !wait {
					stage, err := rt.session.PollTranscriptionStage(rt.ctx)
					if err != nil {
						return err
					}
					rt.recordStage(pitch.PipelineTranscription, "", int(stage), stage.String())
					return report(stage)
				}

				every, deadline := pollSchedule(cmd, rt, interval, timeout)
				last := pitch.TranscriptionStage(-1)
				poller := watch.Poller[pitch.TranscriptionStage]{
					Interval: every,
					Timeout:  deadline,
					Poll:     rt.session.PollTranscriptionStage,
					Done:     pitch.TranscriptionStage.Terminal,
					Retry:    retryablePollError,
					OnResult: func(_ int, stage pitch.TranscriptionStage) {
						if stage == last {
							return
						}
						last = stage
						rt.recordStage(pitch.PipelineTranscription, "", int(stage), stage.String())
						if err := report(stage); err != nil {
							rt.logger.Debug("status output failed", logging.Error(err))
						}
					},
					OnError: func(attempt int, err error) {
						logging.WarnWithContext(rt.logger, "transient poll failure; retrying", "poll_retry",
							logging.Int("attempt", attempt),
							logging.Error(err),
							logging.String(logging.FieldImpact, "status may lag"),
						)
					},
				}
				_, err := poller.Run(rt.ctx)
				logPollStop(rt, pitch.PipelineTranscription, err)
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until transcription finishes")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long; 0 waits indefinitely (default from config)")
	return cmd
}

func newProgressCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show page-level transcription progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				progress, err := rt.session.TranscriptionProgress(rt.ctx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"task_id": rt.session.State().TranscriptionTaskID,
						"done":    progress.Done,
						"total":   progress.Total,
						"percent": progress.Percent(),
					})
				}
				kind := statusInfo
				if progress.Total > 0 && progress.Done == progress.Total {
					kind = statusOK
				}
				message := fmt.Sprintf("%s pages (%.0f%%)", progress, progress.Percent())
				fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine("Progress", kind, message, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}
