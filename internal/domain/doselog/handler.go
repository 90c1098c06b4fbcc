package doselog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"med-adherence/internal/domain/medications"
	"med-adherence/internal/domain/users"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, usersSvc *users.Service, medsSvc *medications.Service) {
	r.Post("/medications/{medicationID}/log", logDoseHandler(svc, usersSvc, medsSvc))
	r.Get("/users/{userID}/medication_logs", listLogsHandler(svc, usersSvc, medsSvc))
	r.Get("/users/{userID}/adherence", adherenceHandler(svc, usersSvc, medsSvc))
}

// logDoseRequest es el cuerpo para registrar una toma.
// Campos opcionales toman default del schedule (dosage, unit) o del
// reloj del server (actual_time).
type logDoseRequest struct {
	UserID     string `json:"user_id"`
	ActualTime string `json:"actual_time"` // RFC3339 opcional
	Dosage     int    `json:"dosage"`
	Unit       string `json:"unit"`
	Notes      string `json:"notes"`
}

type doseEventResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ScheduleID   string    `json:"schedule_id"`
	ExpectedTime time.Time `json:"expected_time"`
	ActualTime   time.Time `json:"actual_time"`
	Dosage       int       `json:"dosage"`
	Unit         string    `json:"unit"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type logDoseResponse struct {
	Skipped []doseEventResponse `json:"skipped"`
	Log     doseEventResponse   `json:"log"`
}

type adherenceResponse struct {
	TotalScheduled      int      `json:"total_scheduled"`
	TotalTaken          int      `json:"total_taken"`
	TotalSkipped        int      `json:"total_skipped"`
	AdherencePct        *float64 `json:"adherence_pct"`
	OnTimePct           *float64 `json:"on_time_pct"`
	AverageDelayMinutes *float64 `json:"average_delay_minutes"`
}

// logDoseHandler godoc
// @Summary Registrar una toma de medicamento
// @Description Registra la dosis contra el schedule vigente del usuario para ese medicamento. Si pasaron ciclos completos sin tomar desde la última dosis real, se insertan eventos skipped (dosage 0) por cada ciclo perdido, en la misma operación.
// @Tags doselog
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body logDoseRequest true "Datos de la toma; actual_time en RFC3339 (default: ahora)"
// @Success 201 {object} logDoseResponse
// @Failure 400 {string} string "invalid json / actual_time inválido / actual_time anterior a la última dosis"
// @Failure 404 {string} string "user not found / no schedule for user and medication"
// @Failure 500 {string} string "internal error"
// @Router /medications/{medicationID}/log [post]
func logDoseHandler(svc *Service, usersSvc *users.Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medicationID := chi.URLParam(r, "medicationID")

		var req logDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if _, err := usersSvc.GetByID(r.Context(), req.UserID); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		sched, err := medsSvc.LatestSchedule(r.Context(), req.UserID, medicationID)
		if err != nil {
			http.Error(w, "no schedule for user and medication", http.StatusNotFound)
			return
		}

		var actual *time.Time
		if strings.TrimSpace(req.ActualTime) != "" {
			t, err := time.Parse(time.RFC3339, req.ActualTime)
			if err != nil {
				http.Error(w, "actual_time must be RFC3339", http.StatusBadRequest)
				return
			}
			actual = &t
		}

		res, err := svc.LogDose(r.Context(), Schedule{
			ID:               sched.ID,
			UserID:           sched.UserID,
			Dosage:           sched.Dosage,
			Unit:             sched.Unit,
			FrequencyMinutes: sched.FrequencyMinutes,
		}, LogInput{
			ActualTime: actual,
			Dosage:     req.Dosage,
			Unit:       req.Unit,
			Notes:      req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := logDoseResponse{
			Skipped: make([]doseEventResponse, 0, len(res.Skipped)),
			Log:     toDoseEventResponse(res.Event),
		}
		for _, e := range res.Skipped {
			out.Skipped = append(out.Skipped, toDoseEventResponse(e))
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

// listLogsHandler godoc
// @Summary Listar historial de dosis de un usuario
// @Description Lista los eventos de dosis (reales y skipped) del usuario, con hora esperada y real. Filtros por rango de fechas (sobre actual_time), medicamento y estado.
// @Tags doselog
// @Produce json
// @Param userID path string true "ID del usuario"
// @Param start_date query string false "Fecha/hora mínima actual_time (RFC3339)"
// @Param end_date query string false "Fecha/hora máxima actual_time (RFC3339)"
// @Param medication query string false "Nombre del medicamento"
// @Param status query string false "taken | skipped | late"
// @Param limit query int false "Máximo de eventos (1-200). Default 50"
// @Success 200 {array} doseEventResponse
// @Failure 400 {string} string "parámetros de filtro inválidos"
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "internal error"
// @Router /users/{userID}/medication_logs [get]
func listLogsHandler(svc *Service, usersSvc *users.Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if _, err := usersSvc.GetByID(r.Context(), userID); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		scheduleIDs, narrowed, err := schedulesForMedicationParam(r, medsSvc, userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if narrowed && len(scheduleIDs) == 0 {
			// Medicamento sin schedules para este usuario: historial vacío.
			writeJSON(w, http.StatusOK, []doseEventResponse{})
			return
		}
		filter.ScheduleIDs = scheduleIDs

		items, err := svc.List(r.Context(), userID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseEventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toDoseEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// adherenceHandler godoc
// @Summary Reporte de adherencia
// @Description Calcula, para un rango de fechas y opcionalmente un medicamento: dosis programadas, tomadas, porcentaje de adherencia, porcentaje a tiempo (tolerancia 30 min) y demora promedio de las tardías. Los porcentajes vienen null cuando no hay datos en el rango.
// @Tags doselog
// @Produce json
// @Param userID path string true "ID del usuario"
// @Param start_date query string false "Inicio del rango, sobre expected_time (RFC3339)"
// @Param end_date query string false "Fin del rango, sobre expected_time (RFC3339)"
// @Param medication query string false "Nombre del medicamento"
// @Success 200 {object} adherenceResponse
// @Failure 400 {string} string "parámetros de filtro inválidos"
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "internal error"
// @Router /users/{userID}/adherence [get]
func adherenceHandler(svc *Service, usersSvc *users.Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if _, err := usersSvc.GetByID(r.Context(), userID); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		from, to, err := parseDateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		scheduleIDs, narrowed, err := schedulesForMedicationParam(r, medsSvc, userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if narrowed && len(scheduleIDs) == 0 {
			// Sin schedules => sin slots programados: reporte en cero.
			writeJSON(w, http.StatusOK, toAdherenceResponse(AdherenceReport{}))
			return
		}

		rep, err := svc.Adherence(r.Context(), userID, scheduleIDs, from, to)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toAdherenceResponse(rep))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	from, to, err := parseDateRange(r)
	if err != nil {
		return ListFilter{}, err
	}
	filter.From = from
	filter.To = to

	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		switch Status(v) {
		case StatusTaken, StatusSkipped, StatusLate:
			filter.Status = Status(v)
		default:
			return ListFilter{}, errors.New("status must be taken, skipped or late")
		}
	}

	return filter, nil
}

func parseDateRange(r *http.Request) (from, to *time.Time, err error) {
	if v := strings.TrimSpace(r.URL.Query().Get("start_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("start_date must be RFC3339")
		}
		from = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("end_date must be RFC3339")
		}
		to = &t
	}
	return from, to, nil
}

// schedulesForMedicationParam resuelve el query param `medication`
// (nombre) a los schedule IDs del usuario. narrowed indica si el
// filtro estaba presente; un nombre desconocido no es error, acota a
// cero schedules.
func schedulesForMedicationParam(r *http.Request, medsSvc *medications.Service, userID string) (ids []string, narrowed bool, err error) {
	name := strings.TrimSpace(r.URL.Query().Get("medication"))
	if name == "" {
		return nil, false, nil
	}

	med, err := medsSvc.MedicationByName(r.Context(), name)
	if err != nil {
		// not found => sin schedules; cualquier otro error del repo
		// también termina acá y el caller responde vacío.
		return nil, true, nil
	}

	ids, err = medsSvc.ScheduleIDs(r.Context(), userID, med.ID)
	if err != nil {
		return nil, true, err
	}
	return ids, true, nil
}

func toDoseEventResponse(e DoseEvent) doseEventResponse {
	return doseEventResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		ScheduleID:   e.ScheduleID,
		ExpectedTime: e.ExpectedTime,
		ActualTime:   e.ActualTime,
		Dosage:       e.Dosage,
		Unit:         e.Unit,
		Notes:        e.Notes,
		Status:       StatusOf(e),
		RecordedAt:   e.RecordedAt,
	}
}

func toAdherenceResponse(rep AdherenceReport) adherenceResponse {
	return adherenceResponse{
		TotalScheduled:      rep.TotalScheduled,
		TotalTaken:          rep.TotalTaken,
		TotalSkipped:        rep.TotalSkipped,
		AdherencePct:        rep.AdherencePct,
		OnTimePct:           rep.OnTimePct,
		AverageDelayMinutes: rep.AverageDelayMinutes,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
