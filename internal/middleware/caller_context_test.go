package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCallerContext(t *testing.T) {
	var (
		got uuid.UUID
		ok  bool
	)
	h := CallerContext()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = GetCaller(r.Context())
	}))

	id := uuid.New()
	cases := []struct {
		header string
		wantOK bool
	}{
		{header: id.String(), wantOK: true},
		{header: "  " + id.String() + " ", wantOK: true},
		{header: "", wantOK: false},
		{header: "steve", wantOK: false},
		{header: uuid.Nil.String(), wantOK: false},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(CallerHeader, tc.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)

		if ok != tc.wantOK {
			t.Fatalf("header %q: expected ok=%v, got %v", tc.header, tc.wantOK, ok)
		}
		if ok && got != id {
			t.Fatalf("header %q: expected %s, got %s", tc.header, id, got)
		}
	}
}
