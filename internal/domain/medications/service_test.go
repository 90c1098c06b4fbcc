package medications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"med-adherence/internal/ports/formulary"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	medications []Medication
	schedules   []Schedule
}

func newTestRepo() *testRepo {
	return &testRepo{}
}

func (r *testRepo) GetOrCreateMedication(ctx context.Context, m Medication) (Medication, error) {
	for _, existing := range r.medications {
		if strings.EqualFold(existing.Name, m.Name) {
			return existing, nil
		}
	}
	r.medications = append(r.medications, m)
	return m, nil
}

func (r *testRepo) GetMedicationByName(ctx context.Context, name string) (Medication, error) {
	for _, m := range r.medications {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Medication{}, errors.New("medication not found")
}

func (r *testRepo) CreateSchedule(ctx context.Context, s Schedule) error {
	r.schedules = append(r.schedules, s)
	return nil
}

func (r *testRepo) LatestSchedule(ctx context.Context, userID, medicationID string) (Schedule, error) {
	var out *Schedule
	for i := range r.schedules {
		s := r.schedules[i]
		if s.UserID != userID || s.MedicationID != medicationID {
			continue
		}
		if out == nil || s.CreatedAt.After(out.CreatedAt) {
			cp := s
			out = &cp
		}
	}
	if out == nil {
		return Schedule{}, errors.New("schedule not found")
	}
	return *out, nil
}

func (r *testRepo) ScheduleIDs(ctx context.Context, userID, medicationID string) ([]string, error) {
	var ids []string
	for _, s := range r.schedules {
		if s.UserID == userID && s.MedicationID == medicationID {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func (r *testRepo) ListActiveByUser(ctx context.Context, userID string) ([]ActiveMedication, error) {
	return nil, nil
}

// fakeFormulary canonicaliza nombres conocidos y rechaza el resto.
type fakeFormulary struct {
	entries map[string]formulary.Entry
}

func (f *fakeFormulary) Lookup(ctx context.Context, name string) (formulary.Entry, error) {
	e, ok := f.entries[strings.ToLower(name)]
	if !ok {
		return formulary.Entry{}, formulary.ErrUnknownMedication
	}
	return e, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), nil, zerolog.Nop())

	valid := CreateInput{
		MedicationName: "Metformina",
		Dosage:         500,
		Unit:           "mg",
		Frequency:      720,
	}

	cases := []struct {
		name   string
		userID string
		mutate func(in *CreateInput)
	}{
		{"empty user", "", func(in *CreateInput) {}},
		{"empty name", "user-1", func(in *CreateInput) { in.MedicationName = "  " }},
		{"zero dosage", "user-1", func(in *CreateInput) { in.Dosage = 0 }},
		{"negative dosage", "user-1", func(in *CreateInput) { in.Dosage = -1 }},
		{"empty unit", "user-1", func(in *CreateInput) { in.Unit = "" }},
		{"zero frequency", "user-1", func(in *CreateInput) { in.Frequency = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, _, err := svc.Create(context.Background(), tc.userID, in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_DuplicateNameReusesMedication(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, zerolog.Nop())

	in := CreateInput{MedicationName: "Ibuprofeno", Dosage: 400, Unit: "mg", Frequency: 480}

	med1, sched1, err := svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Mismo nombre con otra capitalización: reutiliza el medicamento,
	// pero crea un schedule nuevo.
	in.MedicationName = "IBUPROFENO"
	in.Dosage = 600
	med2, sched2, err := svc.Create(context.Background(), "user-2", in)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if med1.ID != med2.ID {
		t.Fatalf("duplicate name must resolve to the same medication: %q vs %q", med1.ID, med2.ID)
	}
	if sched1.ID == sched2.ID {
		t.Fatal("each Create must produce its own schedule")
	}
	if len(repo.medications) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(repo.medications))
	}
	if len(repo.schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(repo.schedules))
	}
}

func TestService_Create_DefaultsStartDateAndTrimsFields(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, zerolog.Nop())

	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, sched, err := svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "Metformina",
		Dosage:         500,
		Unit:           " mg ",
		Frequency:      720,
		Instructions:   " con comida ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !sched.StartDate.Equal(now) {
		t.Fatalf("start_date must default to now, got %v", sched.StartDate)
	}
	if sched.Unit != "mg" || sched.Instructions != "con comida" {
		t.Fatalf("fields must be trimmed: %+v", sched)
	}
}

func TestService_Create_FormularyCanonicalizesName(t *testing.T) {
	repo := newTestRepo()
	fx := &fakeFormulary{entries: map[string]formulary.Entry{
		"amoxicilina": {Code: "RX-001", Name: "Amoxicilina", Active: true},
		"rofecoxib":   {Code: "RX-099", Name: "Rofecoxib", Active: false},
	}}
	svc := NewService(repo, fx, zerolog.Nop())

	med, _, err := svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "AMOXICILINA",
		Dosage:         500,
		Unit:           "mg",
		Frequency:      480,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if med.Name != "Amoxicilina" {
		t.Fatalf("name must be canonicalized by the formulary, got %q", med.Name)
	}
	if !med.Active {
		t.Fatal("active formulary entry must yield an active medication")
	}

	// Producto retirado: se registra igual, pero marcado inactivo.
	med, _, err = svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "rofecoxib",
		Dosage:         25,
		Unit:           "mg",
		Frequency:      1440,
	})
	if err != nil {
		t.Fatalf("Create (withdrawn): %v", err)
	}
	if med.Active {
		t.Fatal("withdrawn formulary entry must yield an inactive medication")
	}
}

func TestService_Create_UnknownInFormularyStillCreates(t *testing.T) {
	repo := newTestRepo()
	fx := &fakeFormulary{entries: map[string]formulary.Entry{}}
	svc := NewService(repo, fx, zerolog.Nop())

	med, _, err := svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "Tisana casera",
		Dosage:         1,
		Unit:           "taza",
		Frequency:      1440,
	})
	if err != nil {
		t.Fatalf("unknown medication must not block creation: %v", err)
	}
	if med.Name != "Tisana casera" {
		t.Fatalf("name must stay as reported, got %q", med.Name)
	}
}

func TestService_LatestSchedule(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, zerolog.Nop())

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	med, _, err := svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "Losartán", Dosage: 50, Unit: "mg", Frequency: 1440,
	})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Re-prescripción: el schedule más nuevo gana.
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, sched2, err := svc.Create(context.Background(), "user-1", CreateInput{
		MedicationName: "Losartán", Dosage: 100, Unit: "mg", Frequency: 1440,
	})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	got, err := svc.LatestSchedule(context.Background(), "user-1", med.ID)
	if err != nil {
		t.Fatalf("LatestSchedule: %v", err)
	}
	if got.ID != sched2.ID || got.Dosage != 100 {
		t.Fatalf("expected the newest schedule, got %+v", got)
	}

	if _, err := svc.LatestSchedule(context.Background(), "", med.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty user must fail with ErrInvalidInput, got %v", err)
	}
}
