package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atg25/ProductHunt-Scraper/internal/secrets"
)

type SecretsHandler struct{}

// SetToken stores the Product Hunt developer token in the OS keychain so it
// never lands in the config file.
func (h SecretsHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), 400)
		return
	}
	if strings.TrimSpace(body.Token) == "" {
		http.Error(w, "token is empty", 400)
		return
	}
	if err := secrets.SetAPIToken(body.Token); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (h SecretsHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeleteAPIToken(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
