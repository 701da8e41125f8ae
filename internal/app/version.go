package app

// Service metadata
const ServiceName = "alumnos-service"

// Build-time injection variables
// These are set via -ldflags during build:
//
//	go build -ldflags="-X 'alumnos-service/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
