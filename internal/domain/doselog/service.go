package doselog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// LogInput es la dosis reportada por el caller. Campos en cero toman
// default del schedule (dosage, unit) o del reloj (actual time).
type LogInput struct {
	ActualTime *time.Time
	Dosage     int
	Unit       string
	Notes      string
}

type LogResult struct {
	Skipped []DoseEvent
	Event   DoseEvent
}

// LogDose aplica defaults y corre la reconciliación dentro de la unidad
// atómica del repo: leer el ancla, sintetizar skips e insertar todo
// ocurre bajo el mismo lock/transacción.
func (s *Service) LogDose(ctx context.Context, sched Schedule, in LogInput) (LogResult, error) {
	if strings.TrimSpace(sched.ID) == "" || strings.TrimSpace(sched.UserID) == "" {
		return LogResult{}, ErrInvalidInput
	}

	now := s.now()

	actual := now
	if in.ActualTime != nil {
		actual = *in.ActualTime
	}

	dosage := in.Dosage
	if dosage <= 0 {
		dosage = sched.Dosage
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = sched.Unit
	}

	events, err := s.repo.LogDose(ctx, sched.ID, func(last *DoseEvent) ([]DoseEvent, error) {
		skipped, ev, err := Reconcile(sched, last, ReconcileInput{
			ActualTime: actual,
			Dosage:     dosage,
			Unit:       unit,
			Notes:      strings.TrimSpace(in.Notes),
			RecordedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return append(skipped, ev), nil
	})
	if err != nil {
		return LogResult{}, err
	}
	if len(events) == 0 {
		return LogResult{}, errors.New("doselog: repo returned no events")
	}

	// El evento nuevo siempre va último; lo anterior son skips.
	return LogResult{
		Skipped: events[:len(events)-1],
		Event:   events[len(events)-1],
	}, nil
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]DoseEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

// Adherence arma el reporte para un usuario, opcionalmente acotado a
// ciertos schedules y a un rango de fechas (sobre expected_time).
func (s *Service) Adherence(ctx context.Context, userID string, scheduleIDs []string, from, to *time.Time) (AdherenceReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AdherenceReport{}, ErrInvalidInput
	}

	events, err := s.repo.ListByUser(ctx, userID, ListFilter{
		ScheduleIDs:    scheduleIDs,
		From:           from,
		To:             to,
		OnExpectedTime: true,
	})
	if err != nil {
		return AdherenceReport{}, err
	}

	return ComputeAdherence(events), nil
}
