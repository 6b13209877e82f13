package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pitchctl/internal/pitch"
)

// StageEntry is one observed pipeline stage.
type StageEntry struct {
	PitchID    string         `json:"pitch_id"`
	Pipeline   pitch.Pipeline `json:"pipeline"`
	TaskID     string         `json:"task_id,omitempty"`
	Code       int            `json:"code"`
	Stage      string         `json:"stage"`
	ObservedAt time.Time      `json:"observed_at"`
}

// RecordStage appends an observation to the session's history. The session
// row must already exist.
func (s *Store) RecordStage(ctx context.Context, name string, entry StageEntry) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	observed := entry.ObservedAt
	if observed.IsZero() {
		observed = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO stage_history (
            session_name, pitch_id, pipeline, task_id, stage_code, stage, observed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name,
		entry.PitchID,
		string(entry.Pipeline),
		nullableString(entry.TaskID),
		entry.Code,
		entry.Stage,
		observed.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("record stage for %s: %w", name, err)
	}
	return nil
}

// History returns the session's observations, oldest first.
func (s *Store) History(ctx context.Context, name string) ([]StageEntry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT pitch_id, pipeline, task_id, stage_code, stage, observed_at
         FROM stage_history WHERE session_name = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", name, err)
	}
	defer rows.Close()

	var entries []StageEntry
	for rows.Next() {
		entry, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// LastStage returns the most recent observation for a pipeline task of one
// pitch.
func (s *Store) LastStage(ctx context.Context, name, pitchID string, pipeline pitch.Pipeline, taskID string) (StageEntry, bool, error) {
	if err := ValidateName(name); err != nil {
		return StageEntry{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT pitch_id, pipeline, task_id, stage_code, stage, observed_at
         FROM stage_history
         WHERE session_name = ? AND pitch_id = ? AND pipeline = ? AND IFNULL(task_id, '') = ?
         ORDER BY id DESC LIMIT 1`,
		name, pitchID, string(pipeline), taskID)
	entry, err := scanStage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StageEntry{}, false, nil
	}
	if err != nil {
		return StageEntry{}, false, fmt.Errorf("last stage for %s: %w", name, err)
	}
	return entry, true, nil
}

// SynthesisFailed reports whether the pitch's synthesis task was already seen
// in the absorbing FAILED stage.
func (s *Store) SynthesisFailed(ctx context.Context, name, pitchID, taskID string) (bool, error) {
	if pitchID == "" || taskID == "" {
		return false, nil
	}
	entry, ok, err := s.LastStage(ctx, name, pitchID, pitch.PipelineSynthesis, taskID)
	if err != nil || !ok {
		return false, err
	}
	return entry.Code == int(pitch.StageFailed), nil
}

func scanStage(scanner interface{ Scan(dest ...any) error }) (StageEntry, error) {
	var (
		entry       StageEntry
		pipeline    string
		taskID      sql.NullString
		observedRaw sql.NullString
	)
	if err := scanner.Scan(&entry.PitchID, &pipeline, &taskID, &entry.Code, &entry.Stage, &observedRaw); err != nil {
		return StageEntry{}, err
	}
	entry.Pipeline = pitch.Pipeline(pipeline)
	entry.TaskID = taskID.String
	entry.ObservedAt = parseTimestamp(observedRaw)
	return entry, nil
}
