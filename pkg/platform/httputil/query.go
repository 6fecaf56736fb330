package httputil

import (
	"net/http"
	"strconv"
)

// QueryInt reads an integer query parameter, falling back on absence or
// garbage.
func QueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
