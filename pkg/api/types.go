// pkg/api/types.go
package api

import "github.com/pagesnap/pagesnap/internal/monitoring"

// HealthResponse is the payload of GET /health.
type HealthResponse = monitoring.HealthSnapshot

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Status           int    `json:"status"`
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	Rule             string `json:"rule,omitempty"`
	Field            string `json:"field,omitempty"`
	Value            string `json:"value,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ParameterDoc documents one query parameter of the capture endpoint.
type ParameterDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

// EndpointDoc documents one HTTP endpoint.
type EndpointDoc struct {
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Description string         `json:"description"`
	Parameters  []ParameterDoc `json:"parameters,omitempty"`
}

// DocsResponse is the payload of GET /docs.
type DocsResponse struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Profile   string        `json:"profile"`
	Endpoints []EndpointDoc `json:"endpoints"`
}

// HistoryResponse is the payload of GET /history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

// HistoryEntry is one audited capture in API form.
type HistoryEntry struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	Selector  string `json:"selector,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FullPage  bool   `json:"full_page"`
	Mobile    bool   `json:"mobile"`
	Status    int    `json:"status"`
	Kind      string `json:"kind,omitempty"`
	Bytes     int    `json:"bytes"`
	ElapsedMs int64  `json:"elapsed_ms"`
	CreatedAt string `json:"created_at"`
}
