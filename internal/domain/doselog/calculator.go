package doselog

import "time"

// AdherenceReport resume la adherencia en un rango de fechas.
// Los porcentajes son nil cuando el denominador es 0 (nunca división
// por cero): sin dosis programadas no hay adherencia que reportar.
type AdherenceReport struct {
	TotalScheduled int
	TotalTaken     int
	TotalSkipped   int

	// AdherencePct = taken / scheduled. Nil si scheduled == 0.
	AdherencePct *float64

	// OnTimePct = fracción de las tomadas con |actual - expected|
	// dentro de OnTimeTolerance. Nil si no hay tomadas.
	OnTimePct *float64

	// AverageDelayMinutes = promedio de (actual - expected) sobre las
	// dosis tardías (tomadas fuera de tolerancia). Nil si no hay tardías.
	AverageDelayMinutes *float64
}

// ComputeAdherence calcula el reporte sobre eventos cuyo expected_time
// ya fue filtrado al rango pedido. Cada evento (real o skipped) cuenta
// como un slot programado.
func ComputeAdherence(events []DoseEvent) AdherenceReport {
	rep := AdherenceReport{
		TotalScheduled: len(events),
	}

	var (
		onTime     int
		totalDelay time.Duration
		lateCount  int
	)

	for _, e := range events {
		if e.Skipped() {
			rep.TotalSkipped++
			continue
		}
		rep.TotalTaken++

		if e.OnTime(OnTimeTolerance) {
			onTime++
			continue
		}

		// Tardía: solo suma demora si fue después de lo esperado
		// (una dosis muy adelantada no es "delay").
		lateCount++
		totalDelay += e.Delay()
	}

	if rep.TotalScheduled > 0 {
		pct := float64(rep.TotalTaken) / float64(rep.TotalScheduled)
		rep.AdherencePct = &pct
	}
	if rep.TotalTaken > 0 {
		pct := float64(onTime) / float64(rep.TotalTaken)
		rep.OnTimePct = &pct
	}
	if lateCount > 0 {
		avg := totalDelay.Minutes() / float64(lateCount)
		rep.AverageDelayMinutes = &avg
	}

	return rep
}
