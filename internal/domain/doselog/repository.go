package doselog

import (
	"context"
	"time"
)

type Repository interface {
	// LogDose ejecuta una reconciliación de forma atómica: lee la
	// última dosis real (dosage > 0, Seq más alto) del schedule, invoca
	// build con ese ancla y persiste los eventos resultantes. Lectura y
	// escritura ocurren bajo la misma transacción / lock, para que dos
	// logs concurrentes del mismo schedule no calculen backfills
	// divergentes sobre un ancla vieja.
	// Devuelve los eventos ya con Seq asignado, en orden de inserción.
	LogDose(ctx context.Context, scheduleID string, build func(last *DoseEvent) ([]DoseEvent, error)) ([]DoseEvent, error)

	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]DoseEvent, error)
}

type ListFilter struct {
	// ScheduleIDs restringe a esos schedules (vacío = todos los del user).
	ScheduleIDs []string

	From *time.Time
	To   *time.Time

	// OnExpectedTime aplica From/To sobre expected_time en vez de
	// actual_time. El reporte de adherencia cuenta slots por su hora
	// programada; el listado de historia filtra por hora real.
	OnExpectedTime bool

	// Status filtra por clasificación (taken, skipped, late). Vacío = todos.
	Status Status

	// Limit <= 0 = sin límite (el handler de listado pone su default;
	// el cálculo de adherencia necesita el rango completo).
	Limit int
}
