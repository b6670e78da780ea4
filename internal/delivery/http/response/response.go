package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/user/phishguard/internal/entity"
)

type APIKeyResponse struct {
	APIKey    string    `json:"api_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SubmitURLsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Received int    `json:"received"`
	Added    int    `json:"added"`
	Pending  int64  `json:"pending"`
}

type PendingResponse struct {
	Count     int      `json:"count"`
	DailyURLs []string `json:"daily_urls"`
}

// RegistryResponse lists registry rows, most recently seen first.
type RegistryResponse struct {
	Count int                     `json:"count"`
	Rows  []*entity.RegistryEntry `json:"rows"`
}

type CycleTriggerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, map[string]string{"error": message})
}
