package doselog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReconcileInput es la dosis reportada, ya con defaults aplicados
// (hora actual, dosage/unit del schedule) por el Service.
type ReconcileInput struct {
	ActualTime time.Time
	Dosage     int
	Unit       string
	Notes      string

	// RecordedAt es la hora de registro para todos los eventos que
	// produce la reconciliación (los sintetizados incluidos).
	RecordedAt time.Time
}

// Reconcile es el motor de reconciliación de dosis.
//
// Dada la prescripción, el ancla (última dosis real, o nil si es la
// primera toma) y la dosis reportada, calcula la hora esperada de la
// nueva toma y sintetiza un evento skipped (dosage 0) por cada ciclo
// completo que quedó sin tomar.
//
// Reglas:
//   - sin ancla: expected == actual, nunca hay backfill.
//   - con ancla: expected = ancla.ActualTime + frequency.
//   - si pasaron al menos 2 ciclos completos desde el ancla, se emite
//     un skipped por cada slot `cur` empezando en expected mientras
//     cur+frequency < actual. Con menos de 2 ciclos no se marca nada:
//     una toma tardía dentro del ciclo siguiente no cuenta como miss.
//   - los slots siempre se anclan a la última dosis real, nunca se
//     re-anclan a los skips sintetizados.
//
// Es una función pura: mismo input, mismos eventos (salvo IDs).
func Reconcile(sched Schedule, last *DoseEvent, in ReconcileInput) ([]DoseEvent, DoseEvent, error) {
	if sched.FrequencyMinutes <= 0 {
		return nil, DoseEvent{}, fmt.Errorf("%w: frequency must be positive", ErrInvalidInput)
	}
	if in.Dosage <= 0 {
		return nil, DoseEvent{}, fmt.Errorf("%w: dosage must be positive", ErrInvalidInput)
	}

	freq := time.Duration(sched.FrequencyMinutes) * time.Minute

	newEvent := func(expected time.Time) DoseEvent {
		return DoseEvent{
			ID:           uuid.NewString(),
			UserID:       sched.UserID,
			ScheduleID:   sched.ID,
			ExpectedTime: expected,
			ActualTime:   in.ActualTime,
			Dosage:       in.Dosage,
			Unit:         in.Unit,
			Notes:        in.Notes,
			RecordedAt:   in.RecordedAt,
		}
	}

	// Primera toma: no hay ancla, la hora real define el schedule.
	if last == nil {
		return nil, newEvent(in.ActualTime), nil
	}

	if in.ActualTime.Before(last.ActualTime) {
		return nil, DoseEvent{}, fmt.Errorf(
			"%w: actual_time precedes the last recorded dose", ErrInvalidInput)
	}

	expected := last.ActualTime.Add(freq)

	elapsed := in.ActualTime.Sub(last.ActualTime)

	var skipped []DoseEvent
	if elapsed >= 2*freq {
		for cur := expected; cur.Add(freq).Before(in.ActualTime); cur = cur.Add(freq) {
			skipped = append(skipped, DoseEvent{
				ID:           uuid.NewString(),
				UserID:       sched.UserID,
				ScheduleID:   sched.ID,
				ExpectedTime: cur,
				ActualTime:   cur,
				Dosage:       0,
				Unit:         in.Unit,
				RecordedAt:   in.RecordedAt,
			})
		}
	}

	return skipped, newEvent(expected), nil
}
