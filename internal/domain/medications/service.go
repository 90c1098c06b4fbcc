package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"med-adherence/internal/ports/formulary"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo      Repository
	formulary formulary.Resolver // puede ser nil (modo standalone)
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, fx formulary.Resolver, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		formulary: fx,
		log:       log,
		now:       time.Now,
	}
}

type CreateInput struct {
	MedicationName string
	Dosage         int
	Unit           string
	Frequency      int // minutos entre tomas
	Instructions   string
	StartDate      *time.Time // opcional; default: ahora
}

// Create resuelve (o crea) el Medication por nombre y registra el
// Schedule del usuario. El userID ya viene validado por el handler.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Medication, Schedule, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, Schedule{}, ErrInvalidInput
	}

	name := strings.TrimSpace(in.MedicationName)
	if name == "" {
		return Medication{}, Schedule{}, ErrInvalidInput
	}
	if in.Dosage <= 0 {
		return Medication{}, Schedule{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Unit) == "" {
		return Medication{}, Schedule{}, ErrInvalidInput
	}
	if in.Frequency <= 0 {
		return Medication{}, Schedule{}, ErrInvalidInput
	}

	now := s.now()
	active := true

	// Lookup en el formulario externo, si está configurado. Es solo
	// advisory: canonicaliza el nombre y marca inactivo un producto
	// retirado, pero nunca bloquea la creación.
	if s.formulary != nil {
		entry, err := s.formulary.Lookup(ctx, name)
		switch {
		case err == nil:
			name = entry.Name
			active = entry.Active
		case errors.Is(err, formulary.ErrNotConfigured):
			// standalone, seguimos con el nombre tal cual
		case errors.Is(err, formulary.ErrUnknownMedication):
			s.log.Warn().Str("medication", name).Msg("medication not in formulary")
		default:
			s.log.Warn().Err(err).Str("medication", name).Msg("formulary lookup failed")
		}
	}

	med, err := s.repo.GetOrCreateMedication(ctx, Medication{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    active,
		CreatedAt: now,
	})
	if err != nil {
		return Medication{}, Schedule{}, err
	}

	startDate := now
	if in.StartDate != nil {
		startDate = *in.StartDate
	}

	sched := Schedule{
		ID:               uuid.NewString(),
		UserID:           userID,
		MedicationID:     med.ID,
		Dosage:           in.Dosage,
		Unit:             strings.TrimSpace(in.Unit),
		FrequencyMinutes: in.Frequency,
		Instructions:     strings.TrimSpace(in.Instructions),
		StartDate:        startDate,
		CreatedAt:        now,
	}

	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return Medication{}, Schedule{}, err
	}
	return med, sched, nil
}

// LatestSchedule devuelve el schedule vigente para (user, medication).
func (s *Service) LatestSchedule(ctx context.Context, userID, medicationID string) (Schedule, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(medicationID) == "" {
		return Schedule{}, ErrInvalidInput
	}
	return s.repo.LatestSchedule(ctx, userID, medicationID)
}

func (s *Service) MedicationByName(ctx context.Context, name string) (Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetMedicationByName(ctx, name)
}

func (s *Service) ScheduleIDs(ctx context.Context, userID, medicationID string) ([]string, error) {
	return s.repo.ScheduleIDs(ctx, userID, medicationID)
}

func (s *Service) ListActive(ctx context.Context, userID string) ([]ActiveMedication, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}
