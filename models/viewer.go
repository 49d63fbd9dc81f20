package models

// FileInfo describes one CSV file in the viewer's data directory.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // unix seconds
}

// FilesResponse is the response for GET /api/v1/files.
type FilesResponse struct {
	Success bool         `json:"success"`
	Dir     string       `json:"dir"`
	Files   []FileInfo   `json:"files"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// PreviewResponse is the response for GET /api/v1/files/:name/preview.
type PreviewResponse struct {
	Success bool         `json:"success"`
	Name    string       `json:"name"`
	Columns []string     `json:"columns"`
	Rows    [][]string   `json:"rows"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SeriesResponse is the response for GET /api/v1/files/:name/series.
// X and Y have the same length; Y values that do not parse as numbers are null.
type SeriesResponse struct {
	Success bool         `json:"success"`
	Name    string       `json:"name"`
	XColumn string       `json:"x_column"`
	YColumn string       `json:"y_column"`
	X       []string     `json:"x"`
	Y       []*float64   `json:"y"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	DataDir string `json:"data_dir"`
	Files   int    `json:"files"`
	Version string `json:"version"`
}
