package config

import (
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestApplianceDefaults(t *testing.T) {
	cfg, err := ParseApplianceFlags(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("ParseApplianceFlags: %v", err)
	}
	if cfg.Port != 4000 || cfg.MaxDatagram != 1200 {
		t.Errorf("port/max-datagram = %d/%d, want 4000/1200", cfg.Port, cfg.MaxDatagram)
	}
	if cfg.RecvTimeout != 100*time.Millisecond || cfg.Tick != 100*time.Millisecond {
		t.Errorf("recv-timeout/tick = %v/%v, want 100ms/100ms", cfg.RecvTimeout, cfg.Tick)
	}
	if cfg.TZOffset != 9*time.Hour {
		t.Errorf("tz-offset = %v, want 9h", cfg.TZOffset)
	}
	if cfg.ListenAddr() != "0.0.0.0:4000" {
		t.Errorf("ListenAddr() = %q", cfg.ListenAddr())
	}
}

func TestApplianceFlagValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"custom port", []string{"-port", "5000", "-display", "headless"}, false},
		{"zero port", []string{"-port", "0"}, true},
		{"tiny buffer", []string{"-max-datagram", "9"}, true},
		{"unknown display", []string{"-display", "oled"}, true},
		{"bad rotation", []string{"-rotation", "4"}, true},
		{"zero tick", []string{"-tick", "0s"}, true},
		{"unknown transport", []string{"-transport", "tcp"}, true},
		{"webrtc", []string{"-transport", "webrtc", "-id", "kitchen"}, false},
		{"negative offset", []string{"-tz-offset", "-5h"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseApplianceFlags(newFlagSet(), tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseApplianceFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestSenderFlags(t *testing.T) {
	cfg, err := ParseSenderFlags(newFlagSet(), []string{"-target", "10.0.0.2:4000", "-fps", "5"})
	if err != nil {
		t.Fatalf("ParseSenderFlags: %v", err)
	}
	if cfg.Target != "10.0.0.2:4000" || cfg.FPS != 5 {
		t.Errorf("target/fps = %q/%d", cfg.Target, cfg.FPS)
	}
	if !strings.HasPrefix(cfg.SenderID, "sender-") {
		t.Errorf("SenderID = %q, want generated sender- prefix", cfg.SenderID)
	}

	for _, args := range [][]string{
		{"-max-datagram", "12"},
		{"-x", "-1"},
		{"-fps", "-1"},
		{"-target", ""},
	} {
		if _, err := ParseSenderFlags(newFlagSet(), args); err == nil {
			t.Errorf("ParseSenderFlags(%v) succeeded", args)
		}
	}
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadIdentity(t *testing.T) {
	device := uuid.New()
	id, err := LoadIdentity(env(map[string]string{
		"WIFI_SSID":    "home",
		"WIFI_PASS":    "hunter22",
		"DEVICE_ID":    device.String(),
		"ACCESS_TOKEN": "tok",
	}))
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if id.DeviceID != device {
		t.Errorf("DeviceID = %s, want %s", id.DeviceID, device)
	}
	if id.ApplianceID == uuid.Nil {
		t.Error("ApplianceID was not generated")
	}
	s := id.String()
	if strings.Contains(s, "hunter22") || strings.Contains(s, "tok ") || strings.HasSuffix(s, "tok") {
		t.Errorf("String() leaks secrets: %s", s)
	}
	if !strings.Contains(s, `ssid="home"`) {
		t.Errorf("String() = %s, want ssid", s)
	}
}

func TestLoadIdentityFromProcessEnv(t *testing.T) {
	t.Setenv("APPLIANCE_ID", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	id, err := LoadIdentity(nil)
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if id.ApplianceID.String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("ApplianceID = %s", id.ApplianceID)
	}
}

func TestLoadIdentityRejects(t *testing.T) {
	tests := map[string]string{
		"WIFI_SSID":    strings.Repeat("s", 33),
		"WIFI_PASS":    strings.Repeat("p", 65),
		"ACCESS_TOKEN": strings.Repeat("t", 129),
		"DEVICE_ID":    "not-a-uuid",
		"APPLIANCE_ID": "1234",
	}
	for key, value := range tests {
		if _, err := LoadIdentity(env(map[string]string{key: value})); err == nil {
			t.Errorf("%s=%q accepted", key, value)
		}
	}
}
