// Package temporal implements engine.Engine on the Temporal Go SDK. It owns
// connection construction (cloud vs. local mode) and translates the bridge's
// four primitives into workflow start, update, query and result calls.
package temporal

import (
	"context"
	"crypto/tls"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"

	"github.com/temporal-sa/interactive-research/config"
	"github.com/temporal-sa/interactive-research/engine"
)

// Options configure the Temporal connection. The zero value dials the local
// development server.
type Options struct {
	// Config supplies endpoint, namespace, credentials and cloud-mode flag.
	Config config.Config

	// DisableTracing skips installing the OTEL tracing interceptor on the
	// client. Tracing is enabled by default; spans are emitted through the
	// global TracerProvider.
	DisableTracing bool
}

// Dial establishes a Temporal client connection. Cloud mode uses the
// configured endpoint with API-key credentials over TLS; local mode dials the
// fixed loopback endpoint without TLS. The dial is eager: an unreachable
// server surfaces as engine.ErrEngineUnavailable. No retry policy is layered
// on top of the SDK's own.
func Dial(ctx context.Context, opts Options) (client.Client, error) {
	cfg := opts.Config
	clientOpts := client.Options{
		HostPort:  cfg.HostPort(),
		Namespace: cfg.Namespace(),
		Logger:    newClueLogger(ctx),
	}
	if cfg.ConnectCloud {
		clientOpts.Credentials = client.NewAPIKeyStaticCredentials(cfg.TemporalAPIKey)
		clientOpts.ConnectionOptions = client.ConnectionOptions{
			TLS: &tls.Config{},
		}
	}
	if !opts.DisableTracing {
		tracer, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
			Tracer: otel.Tracer("interactive-research"),
		})
		if err != nil {
			return nil, fmt.Errorf("configure tracing interceptor: %w", err)
		}
		clientOpts.Interceptors = append(clientOpts.Interceptors, tracer)
	}

	c, err := client.DialContext(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", engine.ErrEngineUnavailable, clientOpts.HostPort, err)
	}
	return c, nil
}
