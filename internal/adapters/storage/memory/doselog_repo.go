package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"med-adherence/internal/domain/doselog"
)

type doselogRepo struct {
	mu     sync.Mutex
	events []doselog.DoseEvent
	seq    int64
}

func NewDoselogRepo() doselog.Repository {
	return &doselogRepo{}
}

// LogDose corre build y persiste bajo el mismo lock: el ancla que ve
// build no puede quedar vieja por un log concurrente del mismo schedule.
func (r *doselogRepo) LogDose(ctx context.Context, scheduleID string, build func(last *doselog.DoseEvent) ([]doselog.DoseEvent, error)) ([]doselog.DoseEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if scheduleID == "" {
		return nil, errors.New("schedule id required")
	}

	// Última dosis real (dosage > 0) por Seq.
	var last *doselog.DoseEvent
	for i := range r.events {
		e := r.events[i]
		if e.ScheduleID != scheduleID || e.Skipped() {
			continue
		}
		if last == nil || e.Seq > last.Seq {
			cp := e
			last = &cp
		}
	}

	out, err := build(last)
	if err != nil {
		return nil, err
	}

	for i := range out {
		r.seq++
		out[i].Seq = r.seq
		r.events = append(r.events, out[i])
	}

	return out, nil
}

func (r *doselogRepo) ListByUser(ctx context.Context, userID string, filter doselog.ListFilter) ([]doselog.DoseEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wantSchedule := make(map[string]bool, len(filter.ScheduleIDs))
	for _, id := range filter.ScheduleIDs {
		wantSchedule[id] = true
	}

	out := make([]doselog.DoseEvent, 0)
	for _, e := range r.events {
		if e.UserID != userID {
			continue
		}
		if len(wantSchedule) > 0 && !wantSchedule[e.ScheduleID] {
			continue
		}

		// Rango de fechas: sobre expected_time para adherencia, sobre
		// actual_time para el historial.
		ts := e.ActualTime
		if filter.OnExpectedTime {
			ts = e.ExpectedTime
		}
		if filter.From != nil && ts.Before(*filter.From) {
			continue
		}
		if filter.To != nil && ts.After(*filter.To) {
			continue
		}

		if filter.Status != "" && doselog.StatusOf(e) != filter.Status {
			continue
		}

		out = append(out, e)
	}

	// Más reciente primero, por orden de inserción.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq > out[j].Seq
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}
