// Package version holds build metadata. Values are overridden at link time:
//
//	go build -ldflags "-X github.com/ndewijer/Portfolio-Valuation-Backend/internal/version.Version=1.2.0"
package version

// Version is the application version.
var Version = "dev"

// Commit is the VCS revision the binary was built from.
var Commit = "unknown"
