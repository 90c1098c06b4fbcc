package doselog

import "time"

// OnTimeTolerance es la ventana alrededor de la hora esperada dentro
// de la cual una dosis cuenta como "a tiempo".
const OnTimeTolerance = 30 * time.Minute

// Status clasifica un evento para filtros y reportes.
type Status string

const (
	StatusTaken   Status = "taken"   // dosis real, dentro de tolerancia
	StatusSkipped Status = "skipped" // sintetizada con dosage 0
	StatusLate    Status = "late"    // dosis real, fuera de tolerancia
)

// StatusOf clasifica un evento según dosage y demora.
func StatusOf(e DoseEvent) Status {
	if e.Skipped() {
		return StatusSkipped
	}
	if !e.OnTime(OnTimeTolerance) {
		return StatusLate
	}
	return StatusTaken
}
