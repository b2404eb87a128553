package clinical

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// entryItems is the jsonb document holding an entry's collections.
type entryItems struct {
	PatientPopulations []string `json:"patientPopulations"`
	CustomPopulations  []string `json:"customPopulations"`
	Medications        ItemRefs `json:"medications"`
	Devices            ItemRefs `json:"devices"`
	Procedures         ItemRefs `json:"procedures"`
	CustomMedications  []string `json:"customMedications"`
	CustomDevices      []string `json:"customDevices"`
	CustomProcedures   []string `json:"customProcedures"`
}

const entryColumns = `id, user_id, shift_date, items, notes, points_earned, created_at, updated_at`

// Helpers

func scanEntry(row pgx.Row) (*ClinicalEntry, error) {
	var e ClinicalEntry
	var raw []byte

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ShiftDate,
		&raw,
		&e.Notes,
		&e.PointsEarned,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	var items entryItems
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode entry items: %w", err)
		}
	}

	// Rows written by older clients may miss collections or carry bare ids;
	// Normalize gives them the canonical shape.
	form := Normalize(FormData{
		ShiftDate:          e.ShiftDate,
		PatientPopulations: items.PatientPopulations,
		CustomPopulations:  items.CustomPopulations,
		Medications:        items.Medications,
		Devices:            items.Devices,
		Procedures:         items.Procedures,
		CustomMedications:  items.CustomMedications,
		CustomDevices:      items.CustomDevices,
		CustomProcedures:   items.CustomProcedures,
		Notes:              e.Notes,
	})
	e.Apply(form)

	return &e, nil
}

func encodeItems(e ClinicalEntry) ([]byte, error) {
	data, err := json.Marshal(entryItems{
		PatientPopulations: e.PatientPopulations,
		CustomPopulations:  e.CustomPopulations,
		Medications:        e.Medications,
		Devices:            e.Devices,
		Procedures:         e.Procedures,
		CustomMedications:  e.CustomMedications,
		CustomDevices:      e.CustomDevices,
		CustomProcedures:   e.CustomProcedures,
	})
	if err != nil {
		return nil, fmt.Errorf("encode entry items: %w", err)
	}
	return data, nil
}

// Interface methods

func (r *PgRepository) Append(ctx context.Context, entry ClinicalEntry) error {
	items, err := encodeItems(entry)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO clinical_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.UserID, entry.ShiftDate, items, entry.Notes, entry.PointsEarned, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert clinical entry: %w", err)
	}
	return nil
}

func (r *PgRepository) Replace(ctx context.Context, id uuid.UUID, entry ClinicalEntry) error {
	items, err := encodeItems(entry)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE clinical_entries
		SET shift_date = $3,
		    items = $4,
		    notes = $5,
		    updated_at = $6
		WHERE id = $1
		  AND user_id = $2
	`, id, entry.UserID, entry.ShiftDate, items, entry.Notes, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update clinical entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PgRepository) Remove(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM clinical_entries
		WHERE id = $1
		  AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete clinical entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, userID, id uuid.UUID) (*ClinicalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM clinical_entries
		WHERE id = $1
		  AND user_id = $2
	`, id, userID)
	return scanEntry(row)
}

func (r *PgRepository) List(ctx context.Context, userID uuid.UUID) ([]ClinicalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM clinical_entries
		WHERE user_id = $1
		ORDER BY shift_date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ClinicalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM clinical_entries
		WHERE user_id = $1
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count clinical entries: %w", err)
	}
	return n, nil
}

func (r *PgRepository) ListUsers(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT user_id
		FROM clinical_entries
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, user_id, entry_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.EventType, ev.UserID, ev.EntryID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
