package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"virtualitems/internal/infrastructure/metrics"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
)

type FunctionsConfig struct {
	ProjectID    string
	Region       string
	BaseURL      string
	EmulatorHost string
	Timeout      time.Duration
	TokenSource  oauth2.TokenSource
	HTTPClient   *http.Client
}

// FunctionsClient invokes Firebase callable functions. Every call is a single request-response
// exchange; nothing is retried.
type FunctionsClient struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

type callableRequest struct {
	Data interface{} `json:"data"`
}

type callableResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *callableError  `json:"error"`
}

type callableError struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func NewFunctionsClient(cfg FunctionsConfig) *FunctionsClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = FunctionsBaseURL(cfg.ProjectID, cfg.Region, cfg.EmulatorHost)
	}

	return &FunctionsClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		tokenSource: cfg.TokenSource,
	}
}

// FunctionsBaseURL builds the callable endpoint root for production or the local emulator.
func FunctionsBaseURL(projectID, region, emulatorHost string) string {
	if region == "" {
		region = "us-central1"
	}
	if emulatorHost != "" {
		host := emulatorHost
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			host = "http://" + host
		}
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(host, "/"), projectID, region)
	}
	return fmt.Sprintf("https://%s-%s.cloudfunctions.net", region, projectID)
}

// Call posts params to the named function and decodes the "result" payload into out.
// out may be nil when the caller only needs success or failure.
func (c *FunctionsClient) Call(ctx context.Context, name string, params interface{}, out interface{}) error {
	start := time.Now()
	err := c.call(ctx, name, params, out)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.TransportCalls.WithLabelValues(name, outcome).Inc()
	metrics.TransportLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	logger.Debug("callable %s finished in %s (outcome=%s)", name, time.Since(start), outcome)

	return err
}

func (c *FunctionsClient) call(ctx context.Context, name string, params interface{}, out interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}

	body, err := json.Marshal(callableRequest{Data: params})
	if err != nil {
		return errors.Transport("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewBuffer(body))
	if err != nil {
		return errors.Transport("failed to create request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("callable %s transport failure: %v", name, err)
		return errors.Transport(fmt.Sprintf("failed to call %s", name), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport("failed to read response", err)
	}

	var decoded callableResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if decodeErr == nil && decoded.Error != nil {
		return mapCallableError(name, decoded.Error)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("callable %s returned HTTP %d without error body", name, resp.StatusCode)
		return errors.Transport(fmt.Sprintf("%s returned HTTP %d", name, resp.StatusCode), nil)
	}

	if decodeErr != nil {
		return errors.Transport(fmt.Sprintf("malformed response from %s", name), decodeErr)
	}
	if decoded.Result == nil {
		return errors.Transport(fmt.Sprintf("malformed response from %s: missing result", name), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return errors.Transport(fmt.Sprintf("failed to parse %s result", name), err)
	}

	return nil
}

func (c *FunctionsClient) bearerToken(ctx context.Context) (string, error) {
	if token, ok := IDTokenFromContext(ctx); ok {
		return token, nil
	}
	if c.tokenSource == nil {
		return "", nil
	}

	token, err := c.tokenSource.Token()
	if err != nil {
		return "", errors.Unauthorized("failed to obtain ID token", err)
	}
	return token.AccessToken, nil
}

func mapCallableError(name string, e *callableError) error {
	message := e.Message
	if message == "" {
		message = strings.ToLower(strings.ReplaceAll(e.Status, "_", " "))
	}

	switch e.Status {
	case "PERMISSION_DENIED", "UNAUTHENTICATED":
		return errors.PermissionDenied(message, fmt.Errorf("%s: %s", name, e.Status))
	case "NOT_FOUND":
		return errors.New(errors.CodeNotFound, message, http.StatusNotFound, fmt.Errorf("%s: %s", name, e.Status))
	case "INVALID_ARGUMENT":
		return errors.Validation(message)
	case "UNAVAILABLE", "DEADLINE_EXCEEDED":
		return errors.Transport(message, fmt.Errorf("%s: %s", name, e.Status))
	default:
		return errors.Remote(e.Status, message)
	}
}
