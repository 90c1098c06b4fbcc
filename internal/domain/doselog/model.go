package doselog

import "time"

// Schedule es la vista mínima de la prescripción que necesita este
// módulo para reconciliar dosis. El handler la arma desde
// medications.Schedule; así doselog no depende de ese paquete.
type Schedule struct {
	ID     string
	UserID string

	Dosage           int
	Unit             string
	FrequencyMinutes int
}

// DoseEvent es un registro de administración: real (Dosage > 0) o
// inferido-skipped (Dosage == 0, ExpectedTime == ActualTime).
type DoseEvent struct {
	ID string

	UserID     string
	ScheduleID string

	ExpectedTime time.Time
	ActualTime   time.Time

	Dosage int
	Unit   string
	Notes  string

	RecordedAt time.Time

	// Seq es el orden de inserción asignado por el store (BIGSERIAL en
	// postgres, contador en memoria). La recencia se decide por Seq,
	// nunca por el ID.
	Seq int64
}

// Skipped indica si el evento es una dosis salteada sintetizada.
func (e DoseEvent) Skipped() bool {
	return e.Dosage == 0
}

// OnTime indica si una dosis tomada cayó dentro de la tolerancia
// respecto de su hora esperada.
func (e DoseEvent) OnTime(tolerance time.Duration) bool {
	d := e.ActualTime.Sub(e.ExpectedTime)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// Delay devuelve cuánto después de la hora esperada se tomó la dosis
// (0 si se tomó antes o a tiempo).
func (e DoseEvent) Delay() time.Duration {
	d := e.ActualTime.Sub(e.ExpectedTime)
	if d < 0 {
		return 0
	}
	return d
}
