package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pitchctl/internal/config"
	"pitchctl/internal/gateway"
	"pitchctl/internal/logging"
	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
	"pitchctl/internal/sessionstore"
)

type commandContext struct {
	configFlag  *string
	sessionFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, sessionFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		sessionFlag: sessionFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) sessionName() string {
	var name string
	if c.sessionFlag != nil {
		name = strings.TrimSpace(*c.sessionFlag)
	}
	if name == "" {
		name = strings.TrimSpace(os.Getenv("PITCHCTL_SESSION"))
	}
	if name == "" {
		name = sessionstore.DefaultSession
	}
	return name
}

// sessionRuntime bundles everything a session command works with.
type sessionRuntime struct {
	ctx     context.Context
	name    string
	cfg     *config.Config
	logger  *slog.Logger
	store   *sessionstore.Store
	client  *gateway.Client
	session *pitch.Session
	lock    *sessionstore.Lock
	closers []io.Closer
}

// openSession restores the named session. Writers take the session lock so
// two invocations cannot interleave snapshots.
func (c *commandContext) openSession(cmd *cobra.Command, write bool) (*sessionRuntime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	name := c.sessionName()
	if err := sessionstore.ValidateName(name); err != nil {
		return nil, err
	}

	rt := &sessionRuntime{name: name, cfg: cfg}
	logger, logCloser, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "open logger", "", err)
	}
	rt.closers = append(rt.closers, logCloser)

	requestID := uuid.NewString()
	ctx := services.WithRequestID(cmd.Context(), requestID)
	rt.ctx = ctx
	rt.logger = logging.NewComponentLogger(logger, "cli").With(
		logging.String("session", name),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	store, err := sessionstore.Open(cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	rt.store = store
	rt.closers = append(rt.closers, store)

	if write {
		lock, err := store.Lock(name)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.lock = lock
	}

	client, err := gateway.NewFromConfig(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.client = client

	record, found, err := store.Load(ctx, name)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if found {
		rt.session = pitch.Restore(client, client.Locator(), logger, record.Snapshot)
	} else {
		rt.session = pitch.New(client, client.Locator(), logger)
	}
	return rt, nil
}

func (rt *sessionRuntime) save() error {
	if rt.session.PitchID() == "" {
		return nil
	}
	return rt.store.Save(rt.ctx, rt.name, rt.session.Snapshot())
}

func (rt *sessionRuntime) recordStage(pipeline pitch.Pipeline, taskID string, code int, stage string) {
	entry := sessionstore.StageEntry{
		PitchID:  rt.session.PitchID(),
		Pipeline: pipeline,
		TaskID:   taskID,
		Code:     code,
		Stage:    stage,
	}
	if err := rt.store.RecordStage(rt.ctx, rt.name, entry); err != nil {
		rt.logger.Debug("stage history not recorded", logging.Error(err))
	}
}

func (rt *sessionRuntime) Close() error {
	var errs []error
	if rt.lock != nil {
		errs = append(errs, rt.lock.Release())
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i].Close())
	}
	return errors.Join(errs...)
}

// withSession runs fn against the named session and, for writers, persists
// the resulting snapshot even when fn fails part-way.
func (c *commandContext) withSession(cmd *cobra.Command, write bool, fn func(*sessionRuntime) error) error {
	rt, err := c.openSession(cmd, write)
	if err != nil {
		return err
	}
	defer rt.Close()

	runErr := fn(rt)
	if write {
		if err := rt.save(); err != nil {
			if runErr == nil {
				return fmt.Errorf("save session: %w", err)
			}
			logging.ErrorWithContext(rt.logger, "session not saved", "session_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun the command; the next successful write saves the session"),
			)
		}
	}
	return runErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
