package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const detectPath = "/api/v1/detect"

// RemoteDetector asks the analysis server for authoritative format
// detection. On any transport or decode failure it answers with the local
// heuristic instead: detection pre-fills defaults and must not block the
// user on a dead server.
type RemoteDetector struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRemoteDetector creates a RemoteDetector for the given server base URL.
func NewRemoteDetector(baseURL string) *RemoteDetector {
	return &RemoteDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  zap.NewNop(),
	}
}

// WithLogger replaces the nop logger.
func (d *RemoteDetector) WithLogger(logger *zap.Logger) *RemoteDetector {
	d.logger = logger
	return d
}

type detectRequest struct {
	Content string `json:"content"`
}

type detectResponse struct {
	Delimiter        string `json:"delimiter"`
	DecimalSeparator string `json:"decimal_separator"`
}

// Detect implements Detector.
func (d *RemoteDetector) Detect(ctx context.Context, sample string) (Result, error) {
	res, err := d.post(ctx, sample)
	if err != nil {
		d.logger.Warn("remote detection failed, using heuristic",
			zap.String("server", d.baseURL),
			zap.Error(err))
		return Detect(sample), nil
	}
	return res, nil
}

func (d *RemoteDetector) post(ctx context.Context, sample string) (Result, error) {
	body, err := json.Marshal(detectRequest{Content: sample})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+detectPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("detection server returned %s", resp.Status)
	}

	var payload detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}

	res := Fallback
	if payload.Delimiter != "" {
		res.Delimiter = []rune(payload.Delimiter)[0]
	}
	if payload.DecimalSeparator != "" {
		res.Decimal = []rune(payload.DecimalSeparator)[0]
	}
	return res, nil
}
