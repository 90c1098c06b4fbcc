package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-adherence/internal/domain/doselog"
	"med-adherence/internal/domain/medications"
	"med-adherence/internal/domain/users"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepo()
	ctx := context.Background()

	u := users.User{ID: "u-1", FirstName: "Ana", LastName: "Quispe", CreatedAt: time.Now()}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Ana" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMedicationsRepo_GetOrCreateIsCaseInsensitive(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	first, err := repo.GetOrCreateMedication(ctx, medications.Medication{
		ID: "m-1", Name: "Metformina", Active: true,
	})
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}

	second, err := repo.GetOrCreateMedication(ctx, medications.Medication{
		ID: "m-2", Name: "  METFORMINA  ", Active: true,
	})
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("same name must resolve to one medication: %q vs %q", second.ID, first.ID)
	}
	if second.Name != "Metformina" {
		t.Fatalf("existing record wins, got %q", second.Name)
	}
}

func TestMedicationsRepo_LatestSchedule(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	old := medications.Schedule{
		ID: "s-1", UserID: "u-1", MedicationID: "m-1",
		Dosage: 500, Unit: "mg", FrequencyMinutes: 720, CreatedAt: base,
	}
	newer := old
	newer.ID = "s-2"
	newer.Dosage = 850
	newer.CreatedAt = base.Add(72 * time.Hour)

	if err := repo.CreateSchedule(ctx, old); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if err := repo.CreateSchedule(ctx, newer); err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	got, err := repo.LatestSchedule(ctx, "u-1", "m-1")
	if err != nil {
		t.Fatalf("LatestSchedule: %v", err)
	}
	if got.ID != "s-2" || got.Dosage != 850 {
		t.Fatalf("expected the newest schedule, got %+v", got)
	}

	ids, err := repo.ScheduleIDs(ctx, "u-1", "m-1")
	if err != nil {
		t.Fatalf("ScheduleIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both historical schedules, got %v", ids)
	}

	if _, err := repo.LatestSchedule(ctx, "u-1", "m-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDoselogRepo_AnchorSkipsSyntheticEvents(t *testing.T) {
	repo := NewDoselogRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	put := func(id string, dosage int, actual time.Time) doselog.DoseEvent {
		t.Helper()
		out, err := repo.LogDose(ctx, "s-1", func(_ *doselog.DoseEvent) ([]doselog.DoseEvent, error) {
			return []doselog.DoseEvent{{
				ID: id, UserID: "u-1", ScheduleID: "s-1",
				ExpectedTime: actual, ActualTime: actual, Dosage: dosage, Unit: "mg",
			}}, nil
		})
		if err != nil {
			t.Fatalf("LogDose: %v", err)
		}
		return out[0]
	}

	real1 := put("ev-1", 200, base)
	put("ev-2", 0, base.Add(24*time.Hour)) // skipped sintético
	real2 := put("ev-3", 200, base.Add(48*time.Hour))

	var seen *doselog.DoseEvent
	_, err := repo.LogDose(ctx, "s-1", func(last *doselog.DoseEvent) ([]doselog.DoseEvent, error) {
		seen = last
		return []doselog.DoseEvent{{ID: "ev-x", UserID: "u-1", ScheduleID: "s-1",
			ExpectedTime: base, ActualTime: base.Add(72 * time.Hour), Dosage: 200}}, nil
	})
	if err != nil {
		t.Fatalf("LogDose: %v", err)
	}

	if seen == nil || seen.ID != real2.ID {
		t.Fatalf("anchor must be the last real dose %q, got %+v", real2.ID, seen)
	}
	if seen.Seq <= real1.Seq {
		t.Fatalf("anchor seq must advance: %d vs %d", seen.Seq, real1.Seq)
	}
}

func TestDoselogRepo_BuildErrorPersistsNothing(t *testing.T) {
	repo := NewDoselogRepo()
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := repo.LogDose(ctx, "s-1", func(_ *doselog.DoseEvent) ([]doselog.DoseEvent, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}

	items, err := repo.ListByUser(ctx, "u-1", doselog.ListFilter{})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("failed build must not persist events, got %d", len(items))
	}
}

func TestDoselogRepo_ListFilters(t *testing.T) {
	repo := NewDoselogRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	seed := func(scheduleID string, dosage int, expected, actual time.Time) {
		t.Helper()
		_, err := repo.LogDose(ctx, scheduleID, func(_ *doselog.DoseEvent) ([]doselog.DoseEvent, error) {
			return []doselog.DoseEvent{{
				ID: scheduleID + actual.Format("150405"), UserID: "u-1", ScheduleID: scheduleID,
				ExpectedTime: expected, ActualTime: actual, Dosage: dosage, Unit: "mg",
			}}, nil
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	seed("s-1", 200, base, base)                                      // taken, a tiempo
	seed("s-1", 0, base.Add(24*time.Hour), base.Add(24*time.Hour))    // skipped
	seed("s-1", 200, base.Add(48*time.Hour), base.Add(50*time.Hour))  // late (2h de demora)
	seed("s-2", 100, base, base)                                      // otro schedule

	all, err := repo.ListByUser(ctx, "u-1", doselog.ListFilter{})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Seq < all[i].Seq {
			t.Fatalf("events must come newest first: %+v", all)
		}
	}

	bySchedule, _ := repo.ListByUser(ctx, "u-1", doselog.ListFilter{ScheduleIDs: []string{"s-2"}})
	if len(bySchedule) != 1 || bySchedule[0].ScheduleID != "s-2" {
		t.Fatalf("schedule filter failed: %+v", bySchedule)
	}

	late, _ := repo.ListByUser(ctx, "u-1", doselog.ListFilter{Status: doselog.StatusLate})
	if len(late) != 1 || late[0].Dosage != 200 {
		t.Fatalf("status filter failed: %+v", late)
	}

	from := base.Add(12 * time.Hour)
	ranged, _ := repo.ListByUser(ctx, "u-1", doselog.ListFilter{From: &from})
	if len(ranged) != 2 {
		t.Fatalf("date filter on actual_time: expected 2, got %d", len(ranged))
	}

	limited, _ := repo.ListByUser(ctx, "u-1", doselog.ListFilter{Limit: 1})
	if len(limited) != 1 || limited[0].Seq != 4 {
		t.Fatalf("limit must keep the newest event: %+v", limited)
	}
}
