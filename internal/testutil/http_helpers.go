package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams builds a test request carrying chi URL parameters,
// for handlers that read path values through chi.URLParam.
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/position/123-456",
//	    map[string]string{"uuid": "123-456"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// NewRequestWithQueryParams builds a test request with an encoded query
// string, for handlers that read r.URL.Query() such as the history
// endpoints and their start_date/end_date window.
//
//	req := testutil.NewRequestWithQueryParams(
//	    http.MethodGet,
//	    "/api/position/123-456/history/value",
//	    map[string]string{"start_date": "2024-01-01", "end_date": "2024-12-31"},
//	)
func NewRequestWithQueryParams(method, path string, queryParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(queryParams) > 0 {
		q := req.URL.Query()
		for key, value := range queryParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req
}
