package api

// Default request limits.
const (
	defaultMaxCandidates = 10_000
	defaultMaxBodyBytes  = 8 << 20
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxCandidates caps the candidates accepted by one request.
func WithMaxCandidates(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
