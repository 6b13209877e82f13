package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pitchctl/internal/logging"
	"pitchctl/internal/pitch"
	"pitchctl/internal/watch"
)

func newSynthCommand(ctx *commandContext) *cobra.Command {
	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Start and follow narrated video synthesis",
	}
	synthCmd.AddCommand(newSynthStartCommand(ctx))
	synthCmd.AddCommand(newSynthStatusCommand(ctx))
	return synthCmd
}

func newSynthStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Trigger video synthesis for the current pitch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				taskID, err := rt.session.TriggerSynthesis(rt.ctx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"pitch_id": rt.session.PitchID(), "task_id": taskID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synthesis task %s started for pitch %s\n", taskID, rt.session.PitchID())
				return nil
			})
		},
	}
}

// errSynthesisFailed reports a task that reached the absorbing FAILED stage.
func errSynthesisFailed(taskID string) error {
	return fmt.Errorf("synthesis task %s failed; run `pitchctl synth start` to try again", taskID)
}

func newSynthStatusCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var interval, timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stage of the current synthesis task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				taskID := rt.session.State().SynthesisTaskID
				if rt.session.PitchID() != "" && taskID != "" {
					failed, err := rt.store.SynthesisFailed(rt.ctx, rt.name, rt.session.PitchID(), taskID)
					if err != nil {
						return err
					}
					if failed {
						if ctx.jsonOutput() {
							if err := writeJSON(cmd, stageReport{
								Pipeline: string(pitch.PipelineSynthesis),
								Stage:    pitch.StageFailed.String(),
								Code:     int(pitch.StageFailed),
								TaskID:   taskID,
								Terminal: true,
							}); err != nil {
								return err
							}
						} else {
							fmt.Fprintln(cmd.OutOrStdout(), synthesisStatusLine(pitch.StageFailed, taskID, shouldColorize(cmd.OutOrStdout())))
						}
						return errSynthesisFailed(taskID)
					}
				}

				colorize := shouldColorize(cmd.OutOrStdout())
				report := func(stage pitch.SynthesisStage) error {
					rt.recordStage(pitch.PipelineSynthesis, taskID, int(stage), stage.String())
					if ctx.jsonOutput() {
						return writeJSON(cmd, stageReport{
							Pipeline: string(pitch.PipelineSynthesis),
							Stage:    stage.String(),
							Code:     int(stage),
							TaskID:   taskID,
							Terminal: stage.Terminal(),
						})
					}
					fmt.Fprintln(cmd.OutOrStdout(), synthesisStatusLine(stage, taskID, colorize))
					return nil
				}

				var final pitch.SynthesisStage
				if !wait {
					stage, err := rt.session.PollSynthesisStage(rt.ctx)
					if err != nil {
						return err
					}
					if err := report(stage); err != nil {
						return err
					}
					final = stage
				} else {
					every, deadline := pollSchedule(cmd, rt, interval, timeout)
					last := pitch.SynthesisStage(-1)
					poller := watch.Poller[pitch.SynthesisStage]{
						Interval: every,
						Timeout:  deadline,
						Poll:     rt.session.PollSynthesisStage,
						Done:     pitch.SynthesisStage.Terminal,
						Retry:    retryablePollError,
						OnResult: func(_ int, stage pitch.SynthesisStage) {
							if stage == last {
								return
							}
							last = stage
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
					stage, err := poller.Run(rt.ctx)
					if err != nil {
						logPollStop(rt, pitch.PipelineSynthesis, err)
						return err
					}
					final = stage
				}

				if final.Failed() {
					return errSynthesisFailed(taskID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until synthesis finishes or fails")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long; 0 waits indefinitely (default from config)")
	return cmd
}
