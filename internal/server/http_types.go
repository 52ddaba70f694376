package server

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// InfoResponse is the service banner served at GET /.
type InfoResponse struct {
	Service        string `json:"service"`
	Version        string `json:"version"`
	Status         string `json:"status"`
	EmbeddingModel string `json:"embedding_model"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
