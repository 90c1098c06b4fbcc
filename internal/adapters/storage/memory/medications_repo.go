package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"med-adherence/internal/domain/medications"
)

type medicationsRepo struct {
	mu sync.RWMutex

	medsByID map[string]medications.Medication
	// idByName indexa por nombre normalizado (lower + trim); es lo que
	// hace atómico el get-or-create bajo el mismo lock.
	idByName map[string]string

	schedulesByID map[string]medications.Schedule
}

func NewMedicationsRepo() medications.Repository {
	return &medicationsRepo{
		medsByID:      make(map[string]medications.Medication),
		idByName:      make(map[string]string),
		schedulesByID: make(map[string]medications.Schedule),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *medicationsRepo) GetOrCreateMedication(ctx context.Context, m medications.Medication) (medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return medications.Medication{}, errors.New("medication id required")
	}

	key := normalizeName(m.Name)
	if key == "" {
		return medications.Medication{}, errors.New("medication name required")
	}

	if id, ok := r.idByName[key]; ok {
		return r.medsByID[id], nil
	}

	r.medsByID[m.ID] = m
	r.idByName[key] = m.ID
	return m, nil
}

func (r *medicationsRepo) GetMedicationByName(ctx context.Context, name string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByName[normalizeName(name)]
	if !ok {
		return medications.Medication{}, ErrNotFound
	}
	return r.medsByID[id], nil
}

func (r *medicationsRepo) CreateSchedule(ctx context.Context, s medications.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("schedule id required")
	}
	if _, exists := r.schedulesByID[s.ID]; exists {
		return errors.New("schedule already exists")
	}

	r.schedulesByID[s.ID] = s
	return nil
}

func (r *medicationsRepo) LatestSchedule(ctx context.Context, userID, medicationID string) (medications.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner medications.Schedule
	has := false
	for _, s := range r.schedulesByID {
		if s.UserID != userID || s.MedicationID != medicationID {
			continue
		}
		if !has || s.CreatedAt.After(winner.CreatedAt) {
			winner = s
			has = true
		}
	}

	if !has {
		return medications.Schedule{}, ErrNotFound
	}
	return winner, nil
}

func (r *medicationsRepo) ScheduleIDs(ctx context.Context, userID, medicationID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for _, s := range r.schedulesByID {
		if s.UserID == userID && s.MedicationID == medicationID {
			out = append(out, s.ID)
		}
	}
	return out, nil
}

func (r *medicationsRepo) ListActiveByUser(ctx context.Context, userID string) ([]medications.ActiveMedication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Schedule vigente por medicamento (CreatedAt más reciente).
	latest := make(map[string]medications.Schedule)
	for _, s := range r.schedulesByID {
		if s.UserID != userID {
			continue
		}
		if cur, ok := latest[s.MedicationID]; !ok || s.CreatedAt.After(cur.CreatedAt) {
			latest[s.MedicationID] = s
		}
	}

	out := make([]medications.ActiveMedication, 0, len(latest))
	for medID, s := range latest {
		med, ok := r.medsByID[medID]
		if !ok || !med.Active {
			continue
		}
		out = append(out, medications.ActiveMedication{
			Schedule:       s,
			MedicationName: med.Name,
		})
	}

	// Orden estable por nombre para respuestas deterministas.
	sort.Slice(out, func(i, j int) bool {
		return out[i].MedicationName < out[j].MedicationName
	})

	return out, nil
}
