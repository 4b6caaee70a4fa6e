package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types for the signaling protocol.
const (
	TypeRegister              = "register"
	TypeRegistered            = "registered"
	TypeListAppliances        = "list-appliances"
	TypeAppliances            = "appliances"
	TypeAppliancesUpdated     = "appliances-updated"
	TypeOffer                 = "offer"
	TypeAnswer                = "answer"
	TypeICECandidate          = "ice-candidate"
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeError                 = "error"
	TypeApplianceDisconnected = "appliance-disconnected"
)

// ClientType distinguishes the display appliance from tile senders.
const (
	ClientTypeAppliance = "appliance"
	ClientTypeSender    = "sender"
)

// Message is the envelope for all signaling messages.
type Message struct {
	Type        string          `json:"type"`
	ID          string          `json:"id,omitempty"`
	ClientType  string          `json:"clientType,omitempty"`
	From        string          `json:"from,omitempty"`
	Target      string          `json:"target,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	List        []ApplianceInfo `json:"list,omitempty"`
	ApplianceID string          `json:"applianceId,omitempty"`
	Msg         string          `json:"message,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
}

// ApplianceInfo describes an appliance in the appliance list.
type ApplianceInfo struct {
	ID     string `json:"id"`
	Online bool   `json:"online"`
}

var (
	ErrApplianceUnknown = errors.New("appliance not registered")
	ErrApplianceOffline = errors.New("appliance offline")
)

// CheckAppliance reports whether id is listed and online.
func CheckAppliance(list []ApplianceInfo, id string) error {
	for _, a := range list {
		if a.ID != id {
			continue
		}
		if !a.Online {
			return fmt.Errorf("%s: %w", id, ErrApplianceOffline)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", id, ErrApplianceUnknown)
}
