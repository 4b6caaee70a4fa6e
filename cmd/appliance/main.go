package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/junsooki/AirTile/internal/clock"
	"github.com/junsooki/AirTile/internal/config"
	"github.com/junsooki/AirTile/internal/display"
	"github.com/junsooki/AirTile/internal/ingest"
	"github.com/junsooki/AirTile/internal/peer"
	"github.com/junsooki/AirTile/internal/signaling"
	"github.com/junsooki/AirTile/internal/transport"
)

func main() {
	cfg, err := config.ParseApplianceFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("flags: %v", err)
	}

	identity, err := config.LoadIdentity(os.Getenv)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	log.Printf("AirTile appliance starting")
	log.Printf("  Identity:   %s", identity)
	log.Printf("  Display:    %s (rotation %d)", cfg.Display, cfg.Rotation)
	log.Printf("  Transport:  %s", cfg.Transport)
	log.Printf("  Listen:     %s", cfg.ListenAddr())
	log.Printf("  TZ offset:  %s", cfg.TZOffset)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	err = run(ctx, cfg, identity)
	cancel()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// run opens the display and receiver, then runs the ingest and clock
// workers until ctx is done or one of them fails. In simulator mode the
// window holds the calling goroutine.
func run(ctx context.Context, cfg *config.Config, identity *config.Identity) error {
	// Display.
	var (
		surface display.Surface
		window  *display.Window
	)
	switch cfg.Display {
	case config.DisplaySim:
		window = display.NewWindow(cfg.Width, cfg.Height, cfg.WindowScale, "AirTile")
		surface = window
	case config.DisplayFB:
		fb, err := display.OpenFramebuffer(cfg.FBDevice)
		if err != nil {
			return fmt.Errorf("display setup: %w", err)
		}
		defer fb.Close()
		surface = fb
	default:
		surface = display.NewMemory(cfg.Width, cfg.Height)
	}
	rotation, err := display.ParseRotation(cfg.Rotation)
	if err != nil {
		return fmt.Errorf("display setup: %w", err)
	}
	if err := surface.SetRotation(rotation); err != nil {
		return fmt.Errorf("display setup: %w", err)
	}
	shared := display.NewShared(surface)
	w, h := shared.Size()
	log.Printf("  Panel:      %dx%d", w, h)

	// Tile receiver.
	recv, closeRecv, err := openReceiver(cfg, identity)
	if err != nil {
		return err
	}
	defer closeRecv()

	g, ctx := errgroup.WithContext(ctx)
	loop := ingest.NewLoop(recv, shared,
		ingest.WithMaxDatagram(cfg.MaxDatagram),
		ingest.WithStatsInterval(cfg.StatsInterval),
	)
	g.Go(func() error {
		if err := loop.Run(ctx); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		return nil
	})

	renderer := clock.NewRenderer(shared, clock.Options{
		Offset:   cfg.TZOffset,
		Interval: cfg.Tick,
	})
	g.Go(func() error {
		if err := renderer.Run(ctx); err != nil {
			return fmt.Errorf("clock: %w", err)
		}
		return nil
	})

	if window == nil {
		return g.Wait()
	}

	// Ebitengine must own the main goroutine. The window closes when ctx
	// is done; closing it by hand stops the workers.
	stop, cancel := context.WithCancel(ctx)
	defer cancel()
	winErr := window.Run(stop)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if winErr != nil {
		return fmt.Errorf("display: %w", winErr)
	}
	return nil
}

// openReceiver binds the UDP socket, or registers with the signaling
// server and accepts tiles over WebRTC. The returned func releases it.
func openReceiver(cfg *config.Config, identity *config.Identity) (ingest.Receiver, func(), error) {
	if cfg.Transport == config.TransportUDP {
		recv, err := ingest.ListenUDP(cfg.ListenAddr(), cfg.RecvTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("listen: %w", err)
		}
		return recv, func() { recv.Close() }, nil
	}

	id := cfg.ApplianceID
	if id == "" {
		id = identity.ApplianceID.String()
	}
	recv := transport.NewDataChannelReceiver(64, cfg.RecvTimeout)

	// Callbacks run one at a time on the signaling read goroutine.
	var (
		current *peer.Appliance
		sig     *signaling.Client
	)
	sig = signaling.NewClient(cfg.SignalingURL, id, signaling.ClientTypeAppliance, signaling.Handler{
		OnRegistered: func() {
			log.Printf("Registered with signaling server as %s", id)
		},
		OnOffer: func(from string, payload json.RawMessage) {
			log.Printf("Received offer from %s", from)
			if current != nil {
				current.Close()
			}
			var err error
			current, err = peer.NewAppliance(sig, recv)
			if err != nil {
				log.Printf("create appliance peer: %v", err)
				return
			}
			if err := current.HandleOffer(from, payload); err != nil {
				log.Printf("handle offer: %v", err)
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			if current != nil {
				if err := current.HandleICECandidate(payload); err != nil {
					log.Printf("handle ICE candidate: %v", err)
				}
			}
		},
		OnError: func(msg string) {
			log.Printf("signaling error: %s", msg)
		},
	})
	if err := sig.Connect(); err != nil {
		recv.Close()
		return nil, nil, fmt.Errorf("signaling connect: %w", err)
	}
	return recv, func() {
		sig.Close()
		recv.Close()
	}, nil
}
