// Package featureflags wires the Rollout (Rox) SDK. Flags keep their
// defaults when setup fails or no API key is configured, so callers can
// read them unconditionally.
package featureflags

import (
	"context"
	"fmt"

	"github.com/rollout/rox-go/v5/server"
)

// Container holds every flag the service reads.
type Container struct {
	// Offline blocks all non-health traffic when enabled.
	Offline server.RoxFlag
	// LogLevel drives the levelled logger: debug, info, warn, error.
	LogLevel server.RoxString
}

var (
	flags = &Container{
		Offline:  server.NewRoxFlag(false),
		LogLevel: server.NewRoxString("info", []string{"debug", "info", "warn", "error"}),
	}
	rox *server.Rox
)

// Init registers the flag container and connects to Rollout. A missing
// API key is not an error condition worth dying over; the caller logs the
// returned error and continues with flag defaults.
func Init(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("no rollout api key configured, using flag defaults")
	}

	rox = server.NewRox()
	rox.Register("", flags)

	options := server.NewRoxOptions(server.RoxOptionsBuilder{})
	select {
	case <-rox.Setup(apiKey, options):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rox setup: %w", ctx.Err())
	}
}

// Values returns the live flag container.
func Values() *Container {
	return flags
}

// Shutdown releases the SDK. No-op when Init never connected.
func Shutdown() {
	if rox != nil {
		<-rox.Shutdown()
	}
}
