package medications

import "time"

// Medication es el catálogo global: un registro por nombre (único).
// Se crea en el primer uso; un nombre repetido resuelve al registro
// existente en vez de fallar.
type Medication struct {
	ID string

	Name   string
	Active bool

	CreatedAt time.Time
}

// Schedule es la prescripción de un usuario para un medicamento:
// dosis, unidad y frecuencia (minutos entre tomas).
// Puede haber varios schedules para el mismo (user, medication) a lo
// largo del tiempo; el más reciente (CreatedAt) manda para el logging.
type Schedule struct {
	ID string

	UserID       string
	MedicationID string

	Dosage           int    // cantidad por toma, > 0
	Unit             string // "mg", "ml", etc.
	FrequencyMinutes int    // minutos entre tomas, > 0

	Instructions string
	StartDate    time.Time

	CreatedAt time.Time
}

// ActiveMedication es la vista que devuelve el listado por usuario:
// el schedule vigente junto con el nombre del medicamento.
type ActiveMedication struct {
	Schedule       Schedule
	MedicationName string
}
