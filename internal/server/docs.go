// internal/server/docs.go
package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pagesnap/pagesnap/pkg/api"
)

// handleDocs returns a machine-readable description of the API,
// including the active profile's viewport bounds.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	c := s.cfg.Capture

	captureParams := []api.ParameterDoc{
		{
			Name: "url", Type: "string",
			Description: "Target page, absolute http or https URL. Required.",
		},
		{
			Name: "width", Type: "int", Default: strconv.Itoa(c.DefaultWidth),
			Description: fmt.Sprintf("Viewport width in pixels, %d to %d.", c.MinWidth, c.MaxWidth),
		},
		{
			Name: "height", Type: "int", Default: strconv.Itoa(c.DefaultHeight),
			Description: fmt.Sprintf("Viewport height in pixels, %d to %d.", c.MinHeight, c.MaxHeight),
		},
		{
			Name: "format", Type: "string", Default: c.DefaultFormat,
			Description: "Image format: png, jpeg or webp.",
		},
		{
			Name: "quality", Type: "int", Default: strconv.Itoa(c.DefaultQuality),
			Description: "Encoding quality 1-100. Applies to jpeg and webp only.",
		},
		{
			Name: "delay", Type: "int", Default: "0",
			Description: fmt.Sprintf("Extra settle time after load, in milliseconds, up to %d.", c.MaxDelayMs),
		},
		{
			Name: "fullPage", Type: "bool", Default: "false",
			Description: "Capture the entire scrollable page instead of the viewport.",
		},
		{
			Name: "mobile", Type: "bool", Default: "false",
			Description: "Emulate a mobile device: touch, device scale 2 and a mobile user agent.",
		},
		{
			Name: "darkMode", Type: "bool", Default: "false",
			Description: "Render with prefers-color-scheme: dark.",
		},
		{
			Name: "selector", Type: "string",
			Description: "CSS selector; capture only the first matching element.",
		},
	}

	endpoints := []api.EndpointDoc{
		{Method: "GET", Path: "/capture", Description: "Screenshot a web page.", Parameters: captureParams},
		{Method: "GET", Path: "/health", Description: "Service health snapshot."},
		{Method: "GET", Path: "/docs", Description: "This document."},
	}
	if s.metrics != nil {
		endpoints = append(endpoints, api.EndpointDoc{
			Method: "GET", Path: "/metrics", Description: "Prometheus metrics.",
		})
	}
	if s.history != nil {
		endpoints = append(endpoints, api.EndpointDoc{
			Method: "GET", Path: "/history", Description: "Recent capture audit entries, newest first.",
			Parameters: []api.ParameterDoc{
				{Name: "limit", Type: "int", Default: "50", Description: "Number of entries, 1 to 1000."},
			},
		})
	}

	writeJSON(w, http.StatusOK, api.DocsResponse{
		Service:   s.cfg.Name,
		Version:   s.version,
		Profile:   string(s.cfg.Profile),
		Endpoints: endpoints,
	})
}
