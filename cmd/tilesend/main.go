package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/junsooki/AirTile/internal/capture"
	"github.com/junsooki/AirTile/internal/config"
	"github.com/junsooki/AirTile/internal/encoder"
	"github.com/junsooki/AirTile/internal/peer"
	"github.com/junsooki/AirTile/internal/signaling"
	"github.com/junsooki/AirTile/internal/transport"
)

const (
	patternWidth  = 320
	patternHeight = 192
	openTimeout   = 30 * time.Second
)

func main() {
	cfg, err := config.ParseSenderFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("flags: %v", err)
	}

	log.Printf("AirTile sender starting")
	log.Printf("  Sender ID:  %s", cfg.SenderID)
	log.Printf("  Transport:  %s", cfg.Transport)
	log.Printf("  Target:     %s", cfg.Target)
	log.Printf("  Origin:     (%d,%d)", cfg.X, cfg.Y)

	source, err := openSource(cfg)
	if err != nil {
		log.Fatalf("source: %v", err)
	}
	capturer, err := capture.NewTickerCapturer(source, cfg.FPS)
	if err != nil {
		log.Fatalf("capture: %v", err)
	}
	tiler, err := encoder.NewTiler(cfg.MaxDatagram)
	if err != nil {
		log.Fatalf("encoder: %v", err)
	}

	out, cleanup := openTransport(cfg)
	defer cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := capturer.Start(); err != nil {
		log.Fatalf("capture start: %v", err)
	}
	defer capturer.Stop()

	origin := image.Pt(cfg.X, cfg.Y)
	frames := 0
	for {
		select {
		case <-sigCh:
			log.Println("Shutting down...")
			return
		case frame, ok := <-capturer.Frames():
			if !ok {
				log.Printf("Sent %d frame(s)", frames)
				return
			}
			if err := streamTiles(tiler, out, frame.Image, origin, cfg.Pace); err != nil {
				log.Printf("send frame: %v", err)
				continue
			}
			frames++
		}
	}
}

func openSource(cfg *config.SenderConfig) (capture.Source, error) {
	if cfg.Image != "" {
		return capture.ImageFile(cfg.Image, cfg.Width, cfg.Height)
	}
	w, h := cfg.Width, cfg.Height
	if w == 0 {
		w = patternWidth
	}
	if h == 0 {
		h = patternHeight
	}
	return capture.Pattern(w, h), nil
}

// streamTiles splits one frame into datagrams and sends them in order.
func streamTiles(enc encoder.Encoder, out transport.DatagramSender, img *image.RGBA, origin image.Point, pace time.Duration) error {
	datagrams, err := enc.Encode(img, origin)
	if err != nil {
		return err
	}
	for _, d := range datagrams {
		if err := out.SendDatagram(d); err != nil {
			return err
		}
		if pace > 0 {
			time.Sleep(pace)
		}
	}
	return nil
}

// openTransport dials the appliance directly over UDP, or negotiates a
// WebRTC tiles channel through the signaling server and waits for it to open.
func openTransport(cfg *config.SenderConfig) (transport.DatagramSender, func()) {
	if cfg.Transport == config.TransportUDP {
		out, err := transport.DialUDP(cfg.Target)
		if err != nil {
			log.Fatalf("dial: %v", err)
		}
		return out, func() { out.Close() }
	}

	// Callbacks run one at a time on the signaling read goroutine.
	failed := make(chan error, 1)
	fail := func(err error) {
		select {
		case failed <- err:
		default:
		}
	}
	var (
		sender     *peer.Sender
		sig        *signaling.Client
		connecting bool
	)
	sig = signaling.NewClient(cfg.SignalingURL, cfg.SenderID, signaling.ClientTypeSender, signaling.Handler{
		OnRegistered: func() {
			log.Printf("Registered with signaling server, looking up %s", cfg.Target)
			if err := sig.RequestApplianceList(); err != nil {
				fail(fmt.Errorf("list appliances: %w", err))
			}
		},
		OnAppliancesUpdated: func(list []signaling.ApplianceInfo) {
			if connecting {
				return
			}
			if err := signaling.CheckAppliance(list, cfg.Target); err != nil {
				fail(err)
				return
			}
			connecting = true
			log.Printf("Connecting to %s", cfg.Target)
			if err := sender.Connect(); err != nil {
				fail(fmt.Errorf("connect: %w", err))
			}
		},
		OnAnswer: func(from string, payload json.RawMessage) {
			log.Printf("Received answer from %s", from)
			if err := sender.HandleAnswer(payload); err != nil {
				log.Printf("handle answer: %v", err)
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			if err := sender.HandleICECandidate(payload); err != nil {
				log.Printf("handle ICE candidate: %v", err)
			}
		},
		OnApplianceDisconnected: func(id string) {
			if id == cfg.Target {
				log.Printf("Appliance %s disconnected", id)
				fail(fmt.Errorf("%s: %w", id, signaling.ErrApplianceOffline))
			}
		},
		OnError: func(msg string) {
			log.Printf("signaling error: %s", msg)
			fail(errors.New(msg))
		},
	})

	var err error
	sender, err = peer.NewSender(sig, cfg.Target)
	if err != nil {
		log.Fatalf("create sender peer: %v", err)
	}
	cleanup := func() {
		sender.Close()
		sig.Close()
	}
	if err := sig.Connect(); err != nil {
		cleanup()
		log.Fatalf("signaling connect: %v", err)
	}

	if err := awaitOpen(sender.Opened(), failed, sig.Done(), openTimeout); err != nil {
		cleanup()
		log.Fatalf("tiles channel: %v", err)
	}
	log.Printf("Tiles channel open")

	out := sender.Transport()
	return out, func() {
		out.Close()
		cleanup()
	}
}

// awaitOpen waits for the tiles channel to open. It gives up when
// negotiation fails, the signaling connection drops, or timeout passes.
func awaitOpen(opened <-chan struct{}, failed <-chan error, signalingDone <-chan struct{}, timeout time.Duration) error {
	select {
	case <-opened:
		return nil
	case err := <-failed:
		return err
	case <-signalingDone:
		return errSignalingClosed
	case <-time.After(timeout):
		return fmt.Errorf("did not open within %s", timeout)
	}
}

var errSignalingClosed = errors.New("signaling connection closed")
