package server

// Config is the HTTP server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// MaxUploadBytes bounds the size of an uploaded image.
	MaxUploadBytes int

	// Provider and Model are shown on the page; they do not select anything.
	Provider string
	Model    string
}
