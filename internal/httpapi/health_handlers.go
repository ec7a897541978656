package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

type HealthHandler struct {
	DB *sql.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			dbOK = false
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": dbOK,
		"db": dbOK,
	})
}
