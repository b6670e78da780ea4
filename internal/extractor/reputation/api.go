package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient queries the URL-reputation service. The service answers with a flat or
// nested JSON object whose key spelling varies between deployments.
type APIClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewAPIClient returns a client for endpoint. An empty endpoint disables the lookup.
func NewAPIClient(endpoint string, timeout time.Duration) *APIClient {
	return &APIClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an endpoint is configured.
func (c *APIClient) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Query posts {"url": url} and returns the decoded JSON object.
func (c *APIClient) Query(ctx context.Context, url string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("reputation api error %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("reputation api error %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("reputation api: decode: %w", err)
	}
	return out, nil
}

// keyAliases maps each output column to the keys it may appear under.
// A path with more than one element walks nested objects.
var keyAliases = map[string][][]string{
	ColSSLExists:    {{"SSL Exists"}, {"ssl_exists"}, {"sslExists"}},
	ColSSLValid:     {{"SSL Valid"}, {"ssl_valid"}, {"sslValid"}},
	ColDomainAge:    {{"Domain Age"}, {"domain_age"}, {"domain_age_days"}},
	ColDomainExpiry: {{"Domain Expiry"}, {"domain_expiry"}, {"days_to_expiry"}},
	ColVTReputation: {{"VT Reputation"}, {"vt_reputation"}, {"reputation"}},
	ColVTMalicious:  {{"VT Malicious"}, {"vt_stats", "malicious"}, {"vt_malicious"}},
	ColVTSuspicious: {{"VT Suspicious"}, {"vt_stats", "suspicious"}, {"vt_suspicious"}},
	ColVTUndetected: {{"VT Undetected"}, {"vt_stats", "undetected"}, {"vt_undetected"}},
	ColVTHarmless:   {{"VT Harmless"}, {"vt_stats", "harmless"}, {"vt_harmless"}},
}

// pick returns the first alias present in doc. Booleans become 0/1.
func pick(doc map[string]any, column string) (any, bool) {
	for _, path := range keyAliases[column] {
		var cur any = doc
		found := true
		for _, k := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				found = false
				break
			}
			if cur, ok = obj[k]; !ok {
				found = false
				break
			}
		}
		if !found {
			continue
		}
		if b, ok := cur.(bool); ok {
			if b {
				return 1, true
			}
			return 0, true
		}
		return cur, true
	}
	return nil, false
}
