package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Identity is the persisted device configuration loaded once at startup.
type Identity struct {
	WiFiSSID     string
	WiFiPassword string
	DeviceID     uuid.UUID
	ApplianceID  uuid.UUID
	AccessToken  string
}

// Field capacity limits.
const (
	maxSSID        = 32
	maxPassword    = 64
	maxAccessToken = 128
)

// LoadIdentity reads the identity from the environment. IDs that are not
// set are generated.
func LoadIdentity(getenv func(string) string) (*Identity, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	id := &Identity{
		WiFiSSID:     getenv("WIFI_SSID"),
		WiFiPassword: getenv("WIFI_PASS"),
		AccessToken:  getenv("ACCESS_TOKEN"),
	}
	if err := checkLen("WIFI_SSID", id.WiFiSSID, maxSSID); err != nil {
		return nil, err
	}
	if err := checkLen("WIFI_PASS", id.WiFiPassword, maxPassword); err != nil {
		return nil, err
	}
	if err := checkLen("ACCESS_TOKEN", id.AccessToken, maxAccessToken); err != nil {
		return nil, err
	}

	var err error
	if id.DeviceID, err = parseOrNew("DEVICE_ID", getenv("DEVICE_ID")); err != nil {
		return nil, err
	}
	if id.ApplianceID, err = parseOrNew("APPLIANCE_ID", getenv("APPLIANCE_ID")); err != nil {
		return nil, err
	}
	return id, nil
}

// String renders the identity for logs with secrets redacted.
func (id *Identity) String() string {
	return fmt.Sprintf("ssid=%q password=%s device=%s appliance=%s token=%s",
		id.WiFiSSID, redact(id.WiFiPassword), id.DeviceID, id.ApplianceID, redact(id.AccessToken))
}

func checkLen(name, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s is %d bytes, limit %d", name, len(v), limit)
	}
	return nil
}

func parseOrNew(name, v string) (uuid.UUID, error) {
	if v == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return id, nil
}

func redact(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}

func randomID() string {
	return uuid.NewString()[:8]
}
