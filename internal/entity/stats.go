package entity

// ServerStats is the operational summary served by the stats endpoint.
type ServerStats struct {
	ModelVersion string `json:"model_version"`
	RegistrySize int64  `json:"registry_size"`
	UpdatesSoFar int64  `json:"updates_so_far"`
	PendingSize  int64  `json:"pending_size"`
}
