package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/junsooki/AirTile/internal/config"
)

func headlessConfig() *config.Config {
	return &config.Config{
		Port:        0,
		MaxDatagram: 1200,
		RecvTimeout: 10 * time.Millisecond,
		Tick:        5 * time.Millisecond,
		TZOffset:    9 * time.Hour,
		Display:     config.DisplayHeadless,
		Width:       320,
		Height:      240,
		Transport:   config.TransportUDP,
	}
}

func TestRunStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, headlessConfig(), &config.Identity{}) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after the context ended")
	}
}

func TestRunReturnsSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   string
	}{
		{
			name: "missing framebuffer",
			modify: func(c *config.Config) {
				c.Display = config.DisplayFB
				c.FBDevice = filepath.Join(t.TempDir(), "fb9")
			},
			want: "display setup",
		},
		{
			name:   "bad rotation",
			modify: func(c *config.Config) { c.Rotation = 7 },
			want:   "display setup",
		},
		{
			name:   "bad port",
			modify: func(c *config.Config) { c.Port = -1 },
			want:   "listen",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := headlessConfig()
			tt.modify(cfg)
			err := run(context.Background(), cfg, &config.Identity{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
