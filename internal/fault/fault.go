// Package fault logs faults that escape request handling.
//
// A recovered fault is logged as an uncaught exception. The guard does not attempt to repair
// state; with fail fast enabled it exits so an external supervisor restarts the process.
package fault

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Guard catches panics outside the HTTP request lifecycle.
type Guard struct {
	logger   zerolog.Logger
	failFast bool
	exit     func(code int)
}

func NewGuard(logger zerolog.Logger, failFast bool) *Guard {
	return &Guard{
		logger:   logger.With().Str("component", "fault").Logger(),
		failFast: failFast,
		exit:     os.Exit,
	}
}

// Recover must be deferred. It logs a panic in the calling goroutine and lets the goroutine end.
func (g *Guard) Recover() {
	if v := recover(); v != nil {
		g.report(v, debug.Stack())
	}
}

// Go runs fn in a new goroutine under the guard.
func (g *Guard) Go(name string, fn func()) {
	go func() {
		defer g.Recover()
		g.logger.Debug().Str("task", name).Msg("Background task started")
		fn()
	}()
}

// Report logs an error that reached the top of a goroutine without a caller to return to.
func (g *Guard) Report(err error) {
	if err == nil {
		return
	}
	g.report(err, nil)
}

func (g *Guard) report(v any, stack []byte) {
	ev := g.logger.Error()
	if err, ok := v.(error); ok {
		ev = ev.Err(err)
	} else {
		ev = ev.Str("panic", fmt.Sprint(v))
	}
	if stack != nil {
		ev = ev.Bytes("stack", stack)
	}
	ev.Bool("fail_fast", g.failFast).Msg("Uncaught Exception")

	if g.failFast {
		g.exit(1)
	}
}
