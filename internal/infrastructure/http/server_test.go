package http

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestServer_RunsShutdownHooksOnCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", echo.New(), zerolog.Nop())
	hooked := make(chan struct{})
	s.OnShutdown(func() { close(hooked) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}

	select {
	case <-hooked:
	case <-time.After(time.Second):
		t.Fatalf("shutdown hook did not run")
	}
}
