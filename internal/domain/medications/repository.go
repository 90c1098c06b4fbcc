package medications

import "context"

type Repository interface {
	// GetOrCreateMedication inserta el medicamento o, si el nombre ya
	// existe (comparación case-insensitive), devuelve el registro
	// existente. La resolución debe ser atómica: dos creadores
	// concurrentes del mismo nombre terminan con el mismo ID.
	GetOrCreateMedication(ctx context.Context, m Medication) (Medication, error)

	GetMedicationByName(ctx context.Context, name string) (Medication, error)

	CreateSchedule(ctx context.Context, s Schedule) error

	// LatestSchedule devuelve el schedule más reciente (CreatedAt desc)
	// para (user, medication), o ErrNotFound del adapter.
	LatestSchedule(ctx context.Context, userID, medicationID string) (Schedule, error)

	// ScheduleIDs devuelve todos los schedules históricos de
	// (user, medication); se usa para filtrar logs por medicamento.
	ScheduleIDs(ctx context.Context, userID, medicationID string) ([]string, error)

	// ListActiveByUser devuelve, por cada medicamento activo del
	// usuario, su schedule vigente.
	ListActiveByUser(ctx context.Context, userID string) ([]ActiveMedication, error)
}
