package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pitchctl/internal/pitch"
)

// Record is one persisted session.
type Record struct {
	Name      string
	Snapshot  pitch.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

const sessionColumns = "name, pitch_id, transcription_task_id, synthesis_task_id, transcript_json, documents_json, created_at, updated_at"

// Load returns the named session. The boolean is false when none is stored.
func (s *Store) Load(ctx context.Context, name string) (Record, bool, error) {
	if err := ValidateName(name); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE name = ?", name)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load session %s: %w", name, err)
	}
	return record, true, nil
}

// Save upserts the snapshot under name.
func (s *Store) Save(ctx context.Context, name string, snap pitch.Snapshot) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	transcript := snap.Transcript
	if transcript == nil {
		transcript = pitch.Transcript{}
	}
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	documents := snap.Documents
	if documents == nil {
		documents = []pitch.ReferenceDocument{}
	}
	documentsJSON, err := json.Marshal(documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}

	timestamp := time.Now().UTC().Format(timestampLayout)
	_, err = s.execWithRetry(ctx,
		`INSERT INTO sessions (
            name, pitch_id, transcription_task_id, synthesis_task_id,
            transcript_json, documents_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            pitch_id = excluded.pitch_id,
            transcription_task_id = excluded.transcription_task_id,
            synthesis_task_id = excluded.synthesis_task_id,
            transcript_json = excluded.transcript_json,
            documents_json = excluded.documents_json,
            updated_at = excluded.updated_at`,
		name,
		nullableString(snap.State.PitchID),
		nullableString(snap.State.TranscriptionTaskID),
		nullableString(snap.State.SynthesisTaskID),
		string(transcriptJSON),
		string(documentsJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", name, err)
	}
	return nil
}

// Delete removes the named session and its stage history.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	res, err := s.execWithRetry(ctx, "DELETE FROM sessions WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns every stored session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		name           string
		pitchID        sql.NullString
		transcribeTask sql.NullString
		synthesisTask  sql.NullString
		transcriptJSON sql.NullString
		documentsJSON  sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)
	if err := scanner.Scan(
		&name,
		&pitchID,
		&transcribeTask,
		&synthesisTask,
		&transcriptJSON,
		&documentsJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return Record{}, err
	}

	snap := pitch.Snapshot{
		State: pitch.State{
			PitchID:             pitchID.String,
			TranscriptionTaskID: transcribeTask.String,
			SynthesisTaskID:     synthesisTask.String,
		},
		Transcript: pitch.Transcript{},
	}
	if transcriptJSON.Valid && transcriptJSON.String != "" {
		if err := json.Unmarshal([]byte(transcriptJSON.String), &snap.Transcript); err != nil {
			return Record{}, fmt.Errorf("decode transcript for %s: %w", name, err)
		}
	}
	if documentsJSON.Valid && documentsJSON.String != "" {
		if err := json.Unmarshal([]byte(documentsJSON.String), &snap.Documents); err != nil {
			return Record{}, fmt.Errorf("decode documents for %s: %w", name, err)
		}
	}
	return Record{
		Name:      name,
		Snapshot:  snap,
		CreatedAt: parseTimestamp(createdRaw),
		UpdatedAt: parseTimestamp(updatedRaw),
	}, nil
}
