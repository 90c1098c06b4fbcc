package medications

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-adherence/internal/domain/users"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, usersSvc *users.Service) {
	r.Post("/medications", createMedicationHandler(svc, usersSvc))
	r.Get("/users/{userID}/medications", listMedicationsHandler(svc, usersSvc))
}

// createMedicationRequest es el cuerpo para registrar un medicamento
// con su schedule de dosis.
type createMedicationRequest struct {
	UserID         string `json:"user_id"`
	MedicationName string `json:"medication_name"`
	Dosage         int    `json:"dosage"`
	Unit           string `json:"unit"`
	Frequency      int    `json:"frequency"` // minutos entre tomas
	Instructions   string `json:"instructions"`
	StartDate      string `json:"start_date"` // RFC3339 opcional
}

type medicationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type scheduleResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	MedicationID string    `json:"medication_id"`
	Dosage       int       `json:"dosage"`
	Unit         string    `json:"unit"`
	Frequency    int       `json:"frequency"`
	Instructions string    `json:"instructions,omitempty"`
	StartDate    time.Time `json:"start_date"`
	CreatedAt    time.Time `json:"created_at"`
}

type createMedicationResponse struct {
	Medication medicationResponse `json:"medication"`
	Schedule   scheduleResponse   `json:"schedule"`
}

type activeMedicationResponse struct {
	MedicationName string           `json:"medication_name"`
	Schedule       scheduleResponse `json:"schedule"`
}

// createMedicationHandler godoc
// @Summary Registrar medicamento y schedule
// @Description Crea el medicamento (o resuelve al existente si el nombre ya está registrado) y el schedule del usuario: dosis, unidad y frecuencia en minutos. Un nombre duplicado no es error.
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body createMedicationRequest true "Datos del medicamento; start_date en RFC3339 (opcional)"
// @Success 201 {object} createMedicationResponse
// @Failure 400 {string} string "invalid json / dosage, unit y frequency requeridos"
// @Failure 404 {string} string "user not found"
// @Router /medications [post]
func createMedicationHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// El usuario debe existir
		if _, err := usersSvc.GetByID(r.Context(), req.UserID); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		var startDate *time.Time
		if strings.TrimSpace(req.StartDate) != "" {
			t, err := time.Parse(time.RFC3339, req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be RFC3339", http.StatusBadRequest)
				return
			}
			startDate = &t
		}

		med, sched, err := svc.Create(r.Context(), req.UserID, CreateInput{
			MedicationName: req.MedicationName,
			Dosage:         req.Dosage,
			Unit:           req.Unit,
			Frequency:      req.Frequency,
			Instructions:   req.Instructions,
			StartDate:      startDate,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, createMedicationResponse{
			Medication: toMedicationResponse(med),
			Schedule:   toScheduleResponse(sched),
		})
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos activos de un usuario
// @Description Devuelve los medicamentos activos del usuario junto con su schedule vigente (el más reciente por medicamento).
// @Tags medications
// @Produce json
// @Param userID path string true "ID del usuario"
// @Success 200 {array} activeMedicationResponse
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "internal error"
// @Router /users/{userID}/medications [get]
func listMedicationsHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if _, err := usersSvc.GetByID(r.Context(), userID); err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		items, err := svc.ListActive(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]activeMedicationResponse, 0, len(items))
		for _, it := range items {
			out = append(out, activeMedicationResponse{
				MedicationName: it.MedicationName,
				Schedule:       toScheduleResponse(it.Schedule),
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

func toScheduleResponse(s Schedule) scheduleResponse {
	return scheduleResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		MedicationID: s.MedicationID,
		Dosage:       s.Dosage,
		Unit:         s.Unit,
		Frequency:    s.FrequencyMinutes,
		Instructions: s.Instructions,
		StartDate:    s.StartDate,
		CreatedAt:    s.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
