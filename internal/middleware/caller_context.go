package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const callerKey ctxKey = "caller"

// CallerHeader lleva el UUID del jugador que ejecuta el comando.
// El host de juego ya autenticó al jugador; acá solo se propaga la identidad.
const CallerHeader = "X-Player-ID"

// CallerContext:
// - Si viene X-Player-ID con un UUID válido => setea el caller.
// - Si no, el request sigue igual; los handlers decidirán si exigen caller.
func CallerContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(CallerHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				// No cortamos aquí. El handler decide 401.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCaller(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(callerKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
