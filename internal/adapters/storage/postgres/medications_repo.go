package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-adherence/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

// GetOrCreateMedication resuelve un nombre duplicado en un solo
// statement: el ON CONFLICT sobre el índice único lower(medication_name)
// convierte el insert en un no-op update para que RETURNING devuelva la
// fila existente. No hay ventana entre creadores concurrentes.
func (r *MedicationsRepo) GetOrCreateMedication(ctx context.Context, m medications.Medication) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO medications (
			medication_id, medication_name, active, created_at
		) VALUES ($1,$2,$3,$4)
		ON CONFLICT (lower(medication_name))
		DO UPDATE SET medication_name = medications.medication_name
		RETURNING medication_id, medication_name, active, created_at
	`,
		m.ID,
		m.Name,
		m.Active,
		m.CreatedAt,
	)

	var out medications.Medication
	if err := row.Scan(&out.ID, &out.Name, &out.Active, &out.CreatedAt); err != nil {
		return medications.Medication{}, err
	}
	return out, nil
}

func (r *MedicationsRepo) GetMedicationByName(ctx context.Context, name string) (medications.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT medication_id, medication_name, active, created_at
		FROM medications
		WHERE lower(medication_name) = lower($1)
	`, name)

	var out medications.Medication
	if err := row.Scan(&out.ID, &out.Name, &out.Active, &out.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return out, nil
}

func (r *MedicationsRepo) CreateSchedule(ctx context.Context, s medications.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_medications (
			schedule_id, user_id, medication_id,
			dosage, unit, frequency_minutes,
			instructions, start_date, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		s.ID,
		s.UserID,
		s.MedicationID,
		s.Dosage,
		s.Unit,
		s.FrequencyMinutes,
		s.Instructions,
		s.StartDate,
		s.CreatedAt,
	)
	return err
}

func (r *MedicationsRepo) LatestSchedule(ctx context.Context, userID, medicationID string) (medications.Schedule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT schedule_id, user_id, medication_id,
		       dosage, unit, frequency_minutes,
		       instructions, start_date, created_at
		FROM user_medications
		WHERE user_id = $1 AND medication_id = $2
		ORDER BY created_at DESC, schedule_id DESC
		LIMIT 1
	`, userID, medicationID)

	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Schedule{}, ErrNotFound
		}
		return medications.Schedule{}, err
	}
	return s, nil
}

func (r *MedicationsRepo) ScheduleIDs(ctx context.Context, userID, medicationID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT schedule_id
		FROM user_medications
		WHERE user_id = $1 AND medication_id = $2
	`, userID, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) ListActiveByUser(ctx context.Context, userID string) ([]medications.ActiveMedication, error) {
	// DISTINCT ON se queda con el schedule más reciente por medicamento.
	rows, err := r.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT DISTINCT ON (s.medication_id)
			       s.schedule_id, s.user_id, s.medication_id,
			       s.dosage, s.unit, s.frequency_minutes,
			       s.instructions, s.start_date, s.created_at,
			       m.medication_name
			FROM user_medications s
			JOIN medications m ON m.medication_id = s.medication_id
			WHERE s.user_id = $1 AND m.active
			ORDER BY s.medication_id, s.created_at DESC, s.schedule_id DESC
		) t
		ORDER BY t.medication_name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.ActiveMedication, 0)
	for rows.Next() {
		var s medications.Schedule
		var name string
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.MedicationID,
			&s.Dosage,
			&s.Unit,
			&s.FrequencyMinutes,
			&s.Instructions,
			&s.StartDate,
			&s.CreatedAt,
			&name,
		); err != nil {
			return nil, err
		}
		out = append(out, medications.ActiveMedication{
			Schedule:       s,
			MedicationName: name,
		})
	}
	return out, rows.Err()
}

func scanSchedule(row *sql.Row) (medications.Schedule, error) {
	var s medications.Schedule
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.MedicationID,
		&s.Dosage,
		&s.Unit,
		&s.FrequencyMinutes,
		&s.Instructions,
		&s.StartDate,
		&s.CreatedAt,
	)
	return s, err
}
