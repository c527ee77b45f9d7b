package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/companions/{category}", listHandler(svc))
	r.Post("/companions/{category}/find", findHandler(svc))
	r.Get("/companions/{category}/debug", debugHandler(svc))
	r.Post("/companions/{category}/release", namedHandler(svc.Release))
	r.Post("/companions/{category}/dismiss", namedHandler(svc.Dismiss))
}

// nameRequest es el cuerpo de release y dismiss.
type nameRequest struct {
	Name string `json:"name"`
}

// commandResponse es la respuesta común de los comandos.
type commandResponse struct {
	Count    int      `json:"count"`
	Messages []string `json:"messages"`
}

type plainCommand func(ctx context.Context, caller uuid.UUID, cat eligibility.Category) (Result, error)

type namedCommand func(ctx context.Context, caller uuid.UUID, cat eligibility.Category, name string) (Result, error)

// findHandler godoc
// @Summary Registrar compañeros cargados
// @Description Registra las criaturas vivas del jugador de la categoría en todas las zonas cargadas. Repetirlo no duplica registros.
// @Tags companions
// @Produce json
// @Param X-Player-ID header string true "UUID del jugador"
// @Param category path string true "pet o mount"
// @Success 200 {object} commandResponse
// @Failure 400 {string} string "categoría inválida"
// @Failure 401 {string} string "no caller"
// @Failure 503 {object} commandResponse "server not available"
// @Router /companions/{category}/find [post]
func findHandler(svc *Service) http.HandlerFunc {
	return plainHandler(svc.Find)
}

// listHandler godoc
// @Summary Listar compañeros registrados
// @Description Lista los registros del jugador en todas las zonas, ordenados por nombre.
// @Tags companions
// @Produce json
// @Param X-Player-ID header string true "UUID del jugador"
// @Param category path string true "pet o mount"
// @Success 200 {object} commandResponse
// @Failure 400 {string} string "categoría inválida"
// @Failure 401 {string} string "no caller"
// @Router /companions/{category} [get]
func listHandler(svc *Service) http.HandlerFunc {
	return plainHandler(svc.List)
}

// debugHandler godoc
// @Summary Diagnóstico de registros
// @Description Compara criaturas cargadas contra registros, por zona.
// @Tags companions
// @Produce json
// @Param X-Player-ID header string true "UUID del jugador"
// @Param category path string true "pet o mount"
// @Success 200 {object} commandResponse
// @Failure 400 {string} string "categoría inválida"
// @Failure 401 {string} string "no caller"
// @Router /companions/{category}/debug [get]
func debugHandler(svc *Service) http.HandlerFunc {
	return plainHandler(svc.Debug)
}

func plainHandler(cmd plainCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.GetCaller(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cat, ok := eligibility.ParseCategory(chi.URLParam(r, "category"))
		if !ok {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}

		res, err := cmd(r.Context(), caller, cat)
		if err != nil {
			writeError(w, res, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

// namedHandler godoc
// @Summary Liberar o despedir un compañero
// @Description release deja libre al compañero más cercano con ese nombre (hasta 50 bloques). dismiss lo elimina del mundo y las monturas sueltan su inventario. En ambos casos deja de estar registrado en todas las zonas.
// @Tags companions
// @Accept json
// @Produce json
// @Param X-Player-ID header string true "UUID del jugador"
// @Param category path string true "pet o mount"
// @Param payload body nameRequest true "Nombre del compañero"
// @Success 200 {object} commandResponse
// @Failure 400 {string} string "nombre requerido"
// @Failure 401 {string} string "no caller"
// @Failure 404 {object} commandResponse "no encontrado"
// @Router /companions/{category}/release [post]
// @Router /companions/{category}/dismiss [post]
func namedHandler(cmd namedCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.GetCaller(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cat, ok := eligibility.ParseCategory(chi.URLParam(r, "category"))
		if !ok {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}

		var req nameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := cmd(r.Context(), caller, cat, req.Name)
		if err != nil {
			writeError(w, res, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

func writeError(w http.ResponseWriter, res Result, err error) {
	switch {
	case errors.Is(err, ErrNameRequired):
		http.Error(w, "name required", http.StatusBadRequest)
	case errors.Is(err, companions.ErrNoCaller):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, companions.ErrNotFound):
		writeJSON(w, http.StatusNotFound, toResponse(res))
	case errors.Is(err, companions.ErrServerUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, toResponse(res))
	default:
		if len(res.Messages) > 0 {
			writeJSON(w, http.StatusInternalServerError, toResponse(res))
			return
		}
		http.Error(w, "an error occurred", http.StatusInternalServerError)
	}
}

func toResponse(res Result) commandResponse {
	msgs := res.Messages
	if msgs == nil {
		msgs = []string{}
	}
	return commandResponse{Count: res.Count, Messages: msgs}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
