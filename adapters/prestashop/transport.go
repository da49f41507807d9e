package prestashop

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricesync/internal/errors"
)

// methodOverrideParam names the intended verb when the request is
// substituted with a POST. Hosts that block PUT at the front proxy still
// pass POST through, and the webservice honors the parameter.
const methodOverrideParam = "ps_method"

const backoffBase = 200 * time.Millisecond

// request is one logical webservice call
type request struct {
	method string
	url    string
	query  map[string][]string
	body   []byte
}

// sendFunc issues a request. Policies (verb substitution, retry) are
// composed as wrappers so each can be exercised on its own.
type sendFunc func(ctx context.Context, req *request) (*http.Response, error)

// sendDirect builds and issues the HTTP request with credentials and the
// fixed identifying header applied.
func (c *Client) sendDirect(ctx context.Context, req *request) (*http.Response, error) {
	var body io.Reader
	if len(req.body) > 0 {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, errors.Internal("building request", err)
	}
	if len(req.query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	httpReq.SetBasicAuth(c.cfg.APIKey, "")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if len(req.body) > 0 {
		httpReq.Header.Set("Content-Type", "application/xml")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, errors.Cancelled()
		}
		return nil, errors.Transient("request failed", err)
	}
	return resp, nil
}

// withMethodOverride substitutes a blocked verb with POST plus a parameter
// naming the intended verb. The substitution is a protocol compatibility
// shim: it fires at most once per call, only on a method-not-allowed
// response, and is invisible to callers when it succeeds.
func withMethodOverride(next sendFunc, enabled bool, log *zap.Logger) sendFunc {
	return func(ctx context.Context, req *request) (*http.Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}
		if !enabled || resp.StatusCode != http.StatusMethodNotAllowed {
			return resp, nil
		}
		if req.method == http.MethodGet || req.method == http.MethodPost {
			return resp, nil
		}

		drain(resp)
		log.Debug("verb blocked by host, substituting POST override",
			zap.String("method", req.method), zap.String("url", req.url))

		override := &request{
			method: http.MethodPost,
			url:    req.url,
			query:  map[string][]string{},
			body:   req.body,
		}
		for k, vs := range req.query {
			override.query[k] = vs
		}
		override.query[methodOverrideParam] = []string{req.method}
		return next(ctx, override)
	}
}

// withRetry retries transient failures with bounded exponential backoff.
// Non-transient responses pass through for classification by the caller.
func (c *Client) withRetry(next sendFunc) sendFunc {
	return func(ctx context.Context, req *request) (*http.Response, error) {
		var lastErr error
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				if err := sleep(ctx, backoffBase*(1<<(attempt-1))); err != nil {
					return nil, err
				}
				c.log.Warn("retrying request",
					zap.String("method", req.method),
					zap.String("url", req.url),
					zap.Int("attempt", attempt))
			}

			resp, err := next(ctx, req)
			if err != nil {
				if !errors.IsType(err, errors.TypeTransient) {
					return nil, err
				}
				lastErr = err
				continue
			}
			if transientStatus(resp.StatusCode) {
				drain(resp)
				lastErr = errors.Newf(errors.TypeTransient, "server responded %d", resp.StatusCode)
				continue
			}
			return resp, nil
		}
		return nil, errors.Wrapf(errors.TypeTransient, lastErr,
			"retries exhausted after %d attempts", c.cfg.MaxRetries+1)
	}
}

// transientStatus reports status codes associated with overload or timeouts
func transientStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= 500
}

// classify maps a final response to the failure taxonomy. 2xx is nil.
func classify(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Authorization(serverDetail(status, body))
	case status == http.StatusNotFound:
		return errors.New(errors.TypeNotFound, serverDetail(status, body))
	case status == http.StatusMethodNotAllowed:
		return errors.New(errors.TypeMethodNotAllowed, serverDetail(status, body))
	default:
		return errors.Validation(serverDetail(status, body))
	}
}

// serverDetail keeps a short, loggable slice of the server's explanation
func serverDetail(status int, body []byte) string {
	const max = 200
	detail := string(body)
	if msg := parseErrorMessage(body); msg != "" {
		detail = msg
	}
	if len(detail) > max {
		detail = detail[:max]
	}
	return http.StatusText(status) + ": " + detail
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.Cancelled()
	case <-t.C:
		return nil
	}
}
