package recall

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/companions/{category}/whistle", whistleHandler(engine))
}

// whistleRequest es el cuerpo opcional del whistle.
type whistleRequest struct {
	Name string `json:"name"` // vacío = todos; "Noname" o "Unknown" = sin nombre
}

// commandResponse es la respuesta común de los comandos.
type commandResponse struct {
	Count    int      `json:"count"`
	Messages []string `json:"messages"`
}

// whistleHandler godoc
// @Summary Llamar compañeros
// @Description Teletransporta al jugador los compañeros registrados de la categoría. Los que no están cargados se reconstruyen desde su estado guardado. Tiene cooldown por jugador.
// @Tags recall
// @Accept json
// @Produce json
// @Param X-Player-ID header string true "UUID del jugador que llama"
// @Param category path string true "pet o mount"
// @Param payload body whistleRequest false "Filtro de nombre opcional"
// @Success 200 {object} commandResponse
// @Failure 400 {string} string "categoría o json inválido"
// @Failure 401 {string} string "no caller"
// @Failure 404 {object} commandResponse "sin candidatos"
// @Failure 429 {object} commandResponse "cooldown activo"
// @Failure 503 {object} commandResponse "server not available"
// @Router /companions/{category}/whistle [post]
func whistleHandler(engine *Engine) http.HandlerFunc {
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

		var req whistleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := engine.Whistle(r.Context(), caller, cat, req.Name)
		if err != nil {
			var cd *companions.CooldownError
			switch {
			case errors.As(err, &cd):
				w.Header().Set("Retry-After", strconv.FormatInt(cd.Seconds(), 10))
				writeJSON(w, http.StatusTooManyRequests, toResponse(res))
			case errors.Is(err, companions.ErrNoCaller):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case errors.Is(err, companions.ErrNoCandidates):
				writeJSON(w, http.StatusNotFound, toResponse(res))
			case errors.Is(err, companions.ErrServerUnavailable):
				writeJSON(w, http.StatusServiceUnavailable, toResponse(res))
			default:
				http.Error(w, "an error occurred", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toResponse(res))
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
