package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// genericError is all a visitor ever sees of a failure.
const genericError = "Something went wrong. Please try again later."

var validate = validator.New()

type HTTPHandler struct {
	service ports.ContentService
}

func NewHTTPHandler(service ports.ContentService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// ContactRequest payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Subject string `json:"subject" validate:"max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request", "fields": fields})
}

// writeFailure maps a facade error to a status without leaking its text.
func writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeError(w, http.StatusInternalServerError, genericError)
}

// List Projects
func (h *HTTPHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	featured, _ := strconv.ParseBool(r.URL.Query().Get("featured"))

	projects, err := h.service.ListProjects(r.Context(), featured)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Get Project by slug
func (h *HTTPHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Slug required")
		return
	}

	project, err := h.service.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

// Get Project by ID
func (h *HTTPHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	project, err := h.service.GetProjectByID(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (h *HTTPHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.ListSkillsByCategory(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": skills})
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *HTTPHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Submit contact form. Field validation happens here, not in the facade.
func (h *HTTPHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	msg, err := h.service.SubmitContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": msg})
}
