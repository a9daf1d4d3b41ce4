// Package notify emits a build-status event to a socket.io endpoint, e.g.
// a CI dashboard that live-streams pipeline progress.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/taskrig/taskrig/internal/ctxlog"
	"github.com/taskrig/taskrig/internal/registry"
	"github.com/taskrig/taskrig/internal/runctx"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the notify step.
type Input struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
	Status    string `hcl:"status"`
	Timeout   string `hcl:"timeout,optional"`
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	err error
}

// OnRunNotify is the handler for the 'notify' step. It connects, emits one
// event carrying the run's task name and the given status, and disconnects.
func OnRunNotify(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("step", "notify", "url", input.URL)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout := 10 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		} else {
			timeout = parsed
		}
	}

	event := input.Event
	if event == "" {
		event = "build_status"
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse URL: %w", err)
	}

	info := runctx.FromContext(ctx)
	payload := map[string]any{
		"task":   info.Task,
		"status": input.Status,
		"ci":     info.CI,
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected, emitting status event", "event", event, "task", info.Task, "status", input.Status)
		io.Emit(event, payload)
		done <- opResult{}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return cty.NilVal, fmt.Errorf("timed out after connecting while emitting '%s'", event)
		}
		return cty.NilVal, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return cty.NilVal, res.err
		}
		return cty.ObjectVal(map[string]cty.Value{
			"emitted": cty.BoolVal(true),
			"event":   cty.StringVal(event),
		}), nil
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("notify", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunNotify,
	})
}
