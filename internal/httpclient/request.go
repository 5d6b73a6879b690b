// SPDX-License-Identifier: MIT
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

// buildHTTPRequest turns an engine.EngineRequest into a real *http.Request,
// applying its query parameters, headers, cookies, and body per its
// BodyKind.
func buildHTTPRequest(ctx context.Context, req *engine.EngineRequest) (*http.Request, error) {
	method := string(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	rawURL := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL = rawURL + sep + req.Query.Encode()
	}

	var body *bytes.Reader
	switch req.BodyKind {
	case engine.BodyForm:
		body = bytes.NewReader([]byte(req.Form.Encode()))
	case engine.BodyJSON:
		encoded, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode json body: %w", err)
		}
		body = bytes.NewReader(encoded)
	case engine.BodyRaw:
		body = bytes.NewReader(req.Raw)
	default:
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	switch req.BodyKind {
	case engine.BodyForm:
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case engine.BodyJSON:
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for name, value := range req.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return httpReq, nil
}
