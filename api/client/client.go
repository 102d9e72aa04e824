package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/log"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost
	// HTTPPUT is the method string used for calling Request()
	HTTPPUT = http.MethodPut

	errCodeNot200 = "API error"

	// DefaultRetries is the number of attempts Request() makes when the
	// server connection fails. Requests answered by the server, whatever
	// the status, are never retried.
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client
	DefaultTimeout = 10 * time.Second
	// retryDelay is the pause between attempts
	retryDelay = 500 * time.Millisecond
)

// HTTPclient is the ballotbox API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
	signer  Signer
}

// New connects to the API host, checks it answers the ping endpoint and
// returns the handle.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	tr := &http.Transport{
		IdleConnTimeout:    DefaultTimeout,
		DisableCompression: false,
		WriteBufferSize:    1 * 1024 * 1024, // 1 MiB
		ReadBufferSize:     1 * 1024 * 1024, // 1 MiB
	}
	c := &HTTPclient{
		c:       &http.Client{Transport: tr, Timeout: DefaultTimeout},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	data, status, err := c.Request(HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	return c, nil
}

// SetRetries configures the number of attempts for the HTTP client.
func (c *HTTPclient) SetRetries(n int) {
	if n < 1 {
		n = 1
	}
	c.retries = n
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if tr, ok := c.c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = d
	}
}

// Request performs a `method` type raw request to the endpoint specified in urlPath parameter.
// If jsonBody is not nil it is sent marshaled as JSON. Returns the response,
// the status code and an error.
//
// Supports query parameters via `params` slice. If the slice is not empty, it should contain pairs of strings;
// the first element of each pair is the key, and the second element is the value.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	var body []byte
	if jsonBody != nil {
		var err error
		if body, err = json.Marshal(jsonBody); err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))
	if len(params) > 0 {
		values := url.Values{}
		for i := 0; i < len(params)-1; i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}

	headers := http.Header{}
	if jsonBody != nil {
		headers.Set("Content-Type", "application/json")
		headers.Set("Accept", "application/json")
	}

	log.Debugw("http client request",
		"type", method,
		"url", u.String(),
		"body", func() string {
			if len(body) > 512 {
				return string(body[:512]) + "..."
			}
			return string(body)
		}(),
	)

	var (
		resp    *http.Response
		lastErr error
	)
	for i := 1; i <= c.retries; i++ {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, u.String(), reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header = headers.Clone()
		if resp, lastErr = c.c.Do(req); lastErr == nil {
			break
		}
		log.Warnw("http request failed", "error", lastErr.Error(), "attempt", i, "retries", c.retries)
		if i < c.retries {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries: %w", lastErr)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// getJSON performs a GET and decodes a 200 response into out. Any other
// status is returned as an *APIError.
func (c *HTTPclient) getJSON(out any, params []string, urlPath ...string) error {
	data, status, err := c.Request(HTTPGET, nil, params, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return newAPIError(status, data)
	}
	return json.Unmarshal(data, out)
}
