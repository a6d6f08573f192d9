package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/byte4ever/polidi/policy"
)

// ErrorClass tells the policy how to treat an HTTP status code.
type ErrorClass int

const (
	// Success means the request succeeded (e.g. 2xx).
	Success ErrorClass = iota
	// Transient means the error is retriable (e.g. 429, 503).
	Transient
	// Permanent means the error is non-retriable (e.g. 400).
	Permanent
)

// Classifier maps an HTTP status code to an ErrorClass.
//
// Pattern: Strategy. Caller injects classification logic
// without modifying the adapter.
type Classifier func(statusCode int) ErrorClass

// DefaultClassifier treats 2xx as success, 429, 502, 503 and 504 as
// transient and everything else as permanent.
func DefaultClassifier(code int) ErrorClass {
	switch {
	case code >= 200 && code < 300:
		return Success
	case code == http.StatusTooManyRequests,
		code == http.StatusBadGateway,
		code == http.StatusServiceUnavailable,
		code == http.StatusGatewayTimeout:
		return Transient
	default:
		return Permanent
	}
}

// StatusError is returned when the Classifier marks a status
// code as Transient or Permanent. The response headers remain
// accessible; its body has already been drained and closed.
type StatusError struct {
	Response   *http.Response
	StatusCode int
}

// Error returns a human-readable description of the status
// error.
func (e *StatusError) Error() string {
	return "http status " + strconv.Itoa(e.StatusCode)
}

// Client wraps an http.Client with a policy and HTTP status
// code classification.
//
// Pattern: Adapter. Bridges net/http and the policy surface
// by translating HTTP status codes into error classification.
type Client struct {
	hc *http.Client
	p  policy.Policy
	cl Classifier
}

// NewClient creates a Client that executes HTTP requests
// through p. A nil hc uses [http.DefaultClient]; a nil cl
// uses [DefaultClassifier].
func NewClient(hc *http.Client, p policy.Policy, cl Classifier) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}

	if cl == nil {
		cl = DefaultClassifier
	}

	return &Client{hc: hc, p: p, cl: cl}
}

// Do sends req through the policy. Requests with a body are
// replayed through req.GetBody on later attempts; when GetBody
// is nil only the first attempt carries the body and a retry
// fails permanently.
//
// A successful response body is read within the attempt, so it
// stays readable once the policy's timeouts have expired. The
// returned body is an in-memory copy.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempt := 0

	res := policy.Call(ctx, c.p, func(ctx context.Context) (*http.Response, error) {
		out := req.Clone(ctx)

		if attempt > 0 && req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, policy.Permanent(errBodyNotReplayable)
			}

			body, err := req.GetBody()
			if err != nil {
				return nil, policy.Permanent(err)
			}

			out.Body = body
		}

		attempt++

		resp, err := c.hc.Do(out)
		if err != nil {
			return nil, err
		}

		class := c.cl(resp.StatusCode)
		if class == Success {
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			if err != nil {
				return nil, err
			}

			resp.Body = io.NopCloser(bytes.NewReader(body))
			resp.ContentLength = int64(len(body))

			return resp, nil
		}

		//nolint:errcheck // draining lets the connection be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		se := &StatusError{Response: resp, StatusCode: resp.StatusCode}
		if class == Permanent {
			return nil, policy.Permanent(se)
		}

		return nil, policy.Transient(se)
	})

	return res.Value, res.Err
}
