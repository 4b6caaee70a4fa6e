// Package config parses command-line flags and the device identity.
package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/junsooki/AirTile/internal/protocol"
)

// Display drivers.
const (
	DisplaySim      = "sim"
	DisplayFB       = "fb"
	DisplayHeadless = "headless"
)

// Transports.
const (
	TransportUDP    = "udp"
	TransportWebRTC = "webrtc"
)

// Config holds all appliance runtime configuration.
type Config struct {
	Port          int
	MaxDatagram   int
	RecvTimeout   time.Duration
	Tick          time.Duration
	TZOffset      time.Duration
	Display       string
	FBDevice      string
	Width         int
	Height        int
	Rotation      int
	WindowScale   int
	Transport     string
	SignalingURL  string
	ApplianceID   string
	StatsInterval time.Duration
}

// ListenAddr returns the UDP address to bind on all interfaces.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// ParseApplianceFlags parses flags for the appliance binary.
func ParseApplianceFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	fs.IntVar(&cfg.Port, "port", protocol.DefaultPort, "UDP port to receive tiles on")
	fs.IntVar(&cfg.MaxDatagram, "max-datagram", protocol.DefaultMaxDatagram, "Receive buffer size in bytes")
	fs.DurationVar(&cfg.RecvTimeout, "recv-timeout", 100*time.Millisecond, "Socket receive timeout")
	fs.DurationVar(&cfg.Tick, "tick", 100*time.Millisecond, "Clock redraw interval")
	fs.DurationVar(&cfg.TZOffset, "tz-offset", 9*time.Hour, "Clock offset east of UTC")
	fs.StringVar(&cfg.Display, "display", DisplaySim, "Display driver: sim, fb or headless")
	fs.StringVar(&cfg.FBDevice, "fb", "/dev/fb0", "Framebuffer device for -display fb")
	fs.IntVar(&cfg.Width, "width", 320, "Panel width for sim and headless displays")
	fs.IntVar(&cfg.Height, "height", 240, "Panel height for sim and headless displays")
	fs.IntVar(&cfg.Rotation, "rotation", 0, "Quarter turns clockwise (0-3)")
	fs.IntVar(&cfg.WindowScale, "window-scale", 2, "Simulator window magnification")
	fs.StringVar(&cfg.Transport, "transport", TransportUDP, "Tile transport: udp or webrtc")
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080", "Signaling server WebSocket URL (webrtc only)")
	fs.StringVar(&cfg.ApplianceID, "id", "", "Signaling ID (defaults to APPLIANCE_ID)")
	fs.DurationVar(&cfg.StatsInterval, "stats-interval", 0, "Log ingest counters this often (0 disables)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxDatagram < protocol.HeaderSize || c.MaxDatagram > 65535 {
		return fmt.Errorf("max-datagram %d out of range %d-65535", c.MaxDatagram, protocol.HeaderSize)
	}
	if c.RecvTimeout <= 0 {
		return fmt.Errorf("recv-timeout must be positive")
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}
	switch c.Display {
	case DisplaySim, DisplayFB, DisplayHeadless:
	default:
		return fmt.Errorf("unknown display %q", c.Display)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid panel size %dx%d", c.Width, c.Height)
	}
	if c.Rotation < 0 || c.Rotation > 3 {
		return fmt.Errorf("rotation %d out of range 0-3", c.Rotation)
	}
	return validateTransport(c.Transport)
}

// SenderConfig holds configuration for the tile sender binary.
type SenderConfig struct {
	Target       string
	Transport    string
	SignalingURL string
	SenderID     string
	Image        string
	X, Y         int
	Width        int
	Height       int
	FPS          int
	MaxDatagram  int
	Pace         time.Duration
}

// ParseSenderFlags parses flags for the sender binary.
func ParseSenderFlags(fs *flag.FlagSet, args []string) (*SenderConfig, error) {
	cfg := &SenderConfig{}
	fs.StringVar(&cfg.Target, "target", net.JoinHostPort("127.0.0.1", strconv.Itoa(protocol.DefaultPort)), "host:port for udp, appliance ID for webrtc")
	fs.StringVar(&cfg.Transport, "transport", TransportUDP, "Tile transport: udp or webrtc")
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080", "Signaling server WebSocket URL (webrtc only)")
	fs.StringVar(&cfg.SenderID, "id", "", "Sender signaling ID (auto-generated if empty)")
	fs.StringVar(&cfg.Image, "image", "", "PNG, JPEG or SVG to send (empty sends a test pattern)")
	fs.IntVar(&cfg.X, "x", 0, "Destination column")
	fs.IntVar(&cfg.Y, "y", 48, "Destination row")
	fs.IntVar(&cfg.Width, "width", 0, "Scale image to this width (pattern default 320)")
	fs.IntVar(&cfg.Height, "height", 0, "Scale image to this height (pattern default 192)")
	fs.IntVar(&cfg.FPS, "fps", 0, "Frames per second (0 sends once)")
	fs.IntVar(&cfg.MaxDatagram, "max-datagram", protocol.DefaultMaxDatagram, "Largest datagram to send")
	fs.DurationVar(&cfg.Pace, "pace", 0, "Delay between datagrams")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Target == "" {
		return nil, fmt.Errorf("target is required")
	}
	if cfg.X < 0 || cfg.Y < 0 || cfg.X > 65535 || cfg.Y > 65535 {
		return nil, fmt.Errorf("origin (%d,%d) out of range", cfg.X, cfg.Y)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, fmt.Errorf("invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS < 0 {
		return nil, fmt.Errorf("fps must not be negative")
	}
	if cfg.MaxDatagram < protocol.HeaderSize+protocol.BytesPerPixel {
		return nil, fmt.Errorf("max-datagram %d cannot carry a pixel", cfg.MaxDatagram)
	}
	if err := validateTransport(cfg.Transport); err != nil {
		return nil, err
	}
	if cfg.SenderID == "" {
		cfg.SenderID = "sender-" + randomID()
	}
	return cfg, nil
}

func validateTransport(t string) error {
	switch t {
	case TransportUDP, TransportWebRTC:
		return nil
	}
	return fmt.Errorf("unknown transport %q", t)
}
