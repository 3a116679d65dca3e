package comic

import (
	"errors"
	"net/http"
	"time"
)

// retryTransport retries replayable requests that failed before a response
// arrived. HTTP error statuses are returned as-is.
type retryTransport struct {
	base     http.RoundTripper
	retryMax int
}

func newRetryTransport(retryMax int) *retryTransport {
	if retryMax < 0 {
		retryMax = 0
	}
	return &retryTransport{
		base: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConnsPerHost:   32,
		},
		retryMax: retryMax,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	max := t.retryMax
	if (req.Method != http.MethodGet && req.Method != http.MethodHead) || req.Body != nil {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		resp, err := t.base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
