package inject_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junioryono/inject"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Shared Test Types
// ============================================================================

type Logger interface {
	Log(msg string)
}

type ConsoleLogger struct {
	Prefix string
	lines  []string
}

func (l *ConsoleLogger) Log(msg string) { l.lines = append(l.lines, l.Prefix+msg) }

func NewConsoleLogger() *ConsoleLogger { return &ConsoleLogger{Prefix: "[app] "} }

type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Created time.Time
}

func (c *SystemClock) Now() time.Time { return time.Now() }

func NewSystemClock() *SystemClock { return &SystemClock{Created: time.Now()} }

type Service interface {
	Logger() Logger
	Clock() Clock
}

type ServiceImpl struct {
	logger Logger
	clock  Clock
}

func (s *ServiceImpl) Logger() Logger { return s.logger }
func (s *ServiceImpl) Clock() Clock   { return s.clock }

func NewService(logger Logger, clock Clock) *ServiceImpl {
	return &ServiceImpl{logger: logger, clock: clock}
}

// A, B and C depend on each other in a ring when registered with the
// cyclic constructors.
type (
	A interface{ Name() string }
	B interface{ Name() string }
	C interface{ Name() string }
)

type named struct{ name string }

func (n *named) Name() string { return n.name }

func newA(B) *named { return &named{name: "a"} }
func newB(C) *named { return &named{name: "b"} }
func newC(A) *named { return &named{name: "c"} }

// Config is a concrete type that is only ever supplied by default or
// instance.
type Config struct {
	Port int
}

// Server takes one bound dependency and two plain values.
type Server struct {
	Logger Logger
	Port   int
	Name   string
}

func NewServer(logger Logger, port int, name string) *Server {
	return &Server{Logger: logger, Port: port, Name: name}
}

// Resource records its disposal.
type Resource struct {
	Name    string
	onClose func(string)
	err     error
	closed  atomic.Bool
}

func (r *Resource) Close() error {
	r.closed.Store(true)
	if r.onClose != nil {
		r.onClose(r.Name)
	}
	return r.err
}

// ContextResource is disposed through Close(context.Context).
type ContextResource struct {
	ctx context.Context
}

func (r *ContextResource) Close(ctx context.Context) error {
	r.ctx = ctx
	return nil
}

var errBoom = errors.New("boom")

// counter builds constructors that count their invocations.
type counter struct {
	calls atomic.Int32
}

func (c *counter) logger() *ConsoleLogger {
	n := c.calls.Add(1)
	return &ConsoleLogger{Prefix: fmt.Sprintf("[%d] ", n)}
}

// ============================================================================
// Helpers
// ============================================================================

func newInjector(t *testing.T, opts ...inject.Option) *inject.Injector {
	t.Helper()

	inj, err := inject.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inj.Close() })

	return inj
}
