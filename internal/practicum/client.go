package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	logx "hwbot/pkg/logx"
)

// DefaultEndpoint is the homework_statuses API URL.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// maxBodyBytes bounds how much of a response we read; error bodies are only
// used for diagnostics.
const maxBodyBytes = 1 << 20

type ClientConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client issues one GET per poll cycle. It never retries on its own;
// the retry cadence belongs to the poll loop.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      logx.Logger
}

func NewClient(cfg ClientConfig, log logx.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// FetchHomeworks GETs submissions reviewed at or after the given watermark
// (Unix seconds) and returns the decoded JSON payload unmodified.
func (c *Client) FetchHomeworks(ctx context.Context, from int64) (any, error) {
	if from < 0 {
		from = 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.endpoint, From: from, Err: err}
	}
	q := req.URL.Query()
	q.Set("from_date", strconv.FormatInt(from, 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "OAuth "+c.token)

	c.log.Debug("requesting homework statuses",
		logx.String("endpoint", c.endpoint),
		logx.Int64("from_date", from))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.endpoint, From: from, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.endpoint, From: from, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UnexpectedStatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   string(body),
			From:   from,
		}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("practicum: decode response (from_date=%d): %w", from, err)
	}

	// The API signals some failures inside a 200 body.
	if obj, ok := payload.(map[string]any); ok {
		for _, key := range []string{"error", "code"} {
			if v, present := obj[key]; present {
				return nil, &APIRefusalError{Key: key, Value: v, From: from}
			}
		}
	}

	return payload, nil
}
