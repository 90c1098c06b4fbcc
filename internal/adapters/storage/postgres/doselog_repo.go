package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"med-adherence/internal/domain/doselog"
)

type DoselogRepo struct {
	db *sql.DB
}

func NewDoselogRepo(db *sql.DB) *DoselogRepo {
	return &DoselogRepo{db: db}
}

// LogDose corre leer-ancla + insertar en una sola transacción. El
// SELECT ... FOR UPDATE sobre la fila del schedule serializa los logs
// concurrentes del mismo schedule (incluida la primera toma, cuando
// todavía no existe ancla que lockear).
func (r *DoselogRepo) LogDose(ctx context.Context, scheduleID string, build func(last *doselog.DoseEvent) ([]doselog.DoseEvent, error)) ([]doselog.DoseEvent, error) {
	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" {
		return nil, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock del schedule
	var locked string
	err = tx.QueryRowContext(ctx, `
		SELECT schedule_id
		FROM user_medications
		WHERE schedule_id = $1
		FOR UPDATE
	`, scheduleID).Scan(&locked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Última dosis real (dosage > 0), por seq
	var last *doselog.DoseEvent
	row := tx.QueryRowContext(ctx, `
		SELECT user_log_id, seq, user_id, schedule_id,
		       expected_time, actual_time,
		       dosage, unit, notes, recorded_at
		FROM user_logs
		WHERE schedule_id = $1 AND dosage > 0
		ORDER BY seq DESC
		LIMIT 1
	`, scheduleID)

	var e doselog.DoseEvent
	var notes sql.NullString
	err = row.Scan(
		&e.ID,
		&e.Seq,
		&e.UserID,
		&e.ScheduleID,
		&e.ExpectedTime,
		&e.ActualTime,
		&e.Dosage,
		&e.Unit,
		&notes,
		&e.RecordedAt,
	)
	switch err {
	case nil:
		e.Notes = notes.String
		last = &e
	case sql.ErrNoRows:
		// primera toma
	default:
		return nil, err
	}

	events, err := build(last)
	if err != nil {
		return nil, err
	}

	for i := range events {
		ev := &events[i]
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO user_logs (
				user_log_id, user_id, schedule_id,
				expected_time, actual_time,
				dosage, unit, notes, recorded_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING seq
		`,
			ev.ID,
			ev.UserID,
			ev.ScheduleID,
			ev.ExpectedTime,
			ev.ActualTime,
			ev.Dosage,
			ev.Unit,
			nullIfEmpty(ev.Notes),
			ev.RecordedAt,
		).Scan(&ev.Seq); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *DoselogRepo) ListByUser(ctx context.Context, userID string, filter doselog.ListFilter) ([]doselog.DoseEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT user_log_id, seq, user_id, schedule_id,
		       expected_time, actual_time,
		       dosage, unit, notes, recorded_at
		FROM user_logs
		WHERE user_id = $1
	`)

	args := []any{userID}
	argN := 2

	if len(filter.ScheduleIDs) > 0 {
		placeholders := make([]string, 0, len(filter.ScheduleIDs))
		for _, id := range filter.ScheduleIDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, id)
			argN++
		}
		sb.WriteString(" AND schedule_id IN (" + strings.Join(placeholders, ",") + ")")
	}

	// Rango sobre expected_time (adherencia) o actual_time (historial).
	tsCol := "actual_time"
	if filter.OnExpectedTime {
		tsCol = "expected_time"
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND %s >= $%d", tsCol, argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND %s <= $%d", tsCol, argN))
		args = append(args, *filter.To)
		argN++
	}

	switch filter.Status {
	case doselog.StatusSkipped:
		sb.WriteString(" AND dosage = 0")
	case doselog.StatusTaken:
		sb.WriteString(" AND dosage > 0")
		sb.WriteString(" AND abs(extract(epoch from actual_time - expected_time)) <= 1800")
	case doselog.StatusLate:
		sb.WriteString(" AND dosage > 0")
		sb.WriteString(" AND abs(extract(epoch from actual_time - expected_time)) > 1800")
	}

	sb.WriteString(" ORDER BY seq DESC")

	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doselog.DoseEvent, 0)
	for rows.Next() {
		var e doselog.DoseEvent
		var notes sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.Seq,
			&e.UserID,
			&e.ScheduleID,
			&e.ExpectedTime,
			&e.ActualTime,
			&e.Dosage,
			&e.Unit,
			&notes,
			&e.RecordedAt,
		); err != nil {
			return nil, err
		}
		e.Notes = notes.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
