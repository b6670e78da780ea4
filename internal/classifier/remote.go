package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/phishguard/internal/entity"
)

// RemoteClient calls an inference service exposing /predict and /predict_proba.
type RemoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteClient returns a client for the service at baseURL.
func NewRemoteClient(baseURL, apiKey string, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

type predictResponse struct {
	Labels []int `json:"labels"`
}

type probaResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

func (c *RemoteClient) Predict(ctx context.Context, m *entity.Matrix) ([]int, error) {
	var resp predictResponse
	if err := c.post(ctx, "/predict", m, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

func (c *RemoteClient) PredictProbability(ctx context.Context, m *entity.Matrix) ([]float64, error) {
	var resp probaResponse
	if err := c.post(ctx, "/predict_proba", m, &resp); err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}

func (c *RemoteClient) post(ctx context.Context, path string, m *entity.Matrix, out any) error {
	body, err := json.Marshal(inferenceRequest{Columns: m.Columns, Rows: m.Rows})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("inference %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("inference %s: decode: %w", path, err)
	}
	return nil
}
