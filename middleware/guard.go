package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/authrail/authrail"
	"github.com/authrail/authrail/permission"
)

// Guard returns middleware enforcing the engine's route registry. Allowed
// requests proceed with the auth context attached (retrieve it with
// authrail.AuthContextFrom); denied requests are answered directly with the
// decision's status and a JSON body.
func Guard(engine *authrail.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeDeny(w, authrail.Decision{
					Status: http.StatusServiceUnavailable,
					Reason: authrail.ReasonStoreUnavailable,
				})
				return
			}

			dec := engine.AuthorizeHTTP(r)
			if !dec.Allowed {
				writeDeny(w, dec)
				return
			}

			if dec.Context != nil {
				r = r.WithContext(authrail.WithAuthContext(r.Context(), dec.Context))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type denyBody struct {
	Error    string                  `json:"error"`
	Reason   string                  `json:"reason"`
	Required *permission.Requirement `json:"required,omitempty"`
	Roles    []string                `json:"roles,omitempty"`
}

func writeDeny(w http.ResponseWriter, dec authrail.Decision) {
	body := denyBody{
		Reason:   string(dec.Reason),
		Required: dec.Required,
		Roles:    dec.Roles,
	}
	switch dec.Status {
	case http.StatusNotFound:
		body.Error = "not found"
	case http.StatusUnauthorized:
		body.Error = "unauthorized"
	case http.StatusForbidden:
		body.Error = "forbidden"
	default:
		body.Error = "service unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dec.Status)
	_ = json.NewEncoder(w).Encode(body)
}
