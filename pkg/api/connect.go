package api

import (
	"net/http"
	"strings"
)

const (
	AuthServiceName        = "travelmate.v1.AuthService"
	ParticipantServiceName = "travelmate.v1.ParticipantService"
	ExpenseServiceName     = "travelmate.v1.ExpenseService"
)

// routeProcedures dispatches to the handler registered for the exact procedure path.
func routeProcedures(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func servicePath(service string) string {
	return "/" + service + "/"
}

func procedureURL(baseURL, procedure string) string {
	return strings.TrimRight(baseURL, "/") + procedure
}
