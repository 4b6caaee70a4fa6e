package peer

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/AirTile/internal/transport"
)

// Sender manages the sender side of the WebRTC connection. It opens an
// unordered, zero-retransmit tiles channel so delivery matches UDP.
type Sender struct {
	pc          *webrtc.PeerConnection
	sig         Signaler
	tiles       *webrtc.DataChannel
	applianceID string
	open        chan struct{}
}

// NewSender creates a Sender peer targeting applianceID.
func NewSender(sig Signaler, applianceID string) (*Sender, error) {
	pc, err := NewPeerConnection()
	if err != nil {
		return nil, err
	}

	ordered := false
	maxRetransmits := uint16(0)
	tiles, err := pc.CreateDataChannel(transport.TilesLabel, &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		pc.Close()
		return nil, err
	}

	s := &Sender{
		pc:          pc,
		sig:         sig,
		tiles:       tiles,
		applianceID: applianceID,
		open:        make(chan struct{}),
	}
	tiles.OnOpen(func() { close(s.open) })

	trickle(pc, sig, func() string { return applianceID })
	return s, nil
}

// Opened is closed once the tiles channel is usable.
func (s *Sender) Opened() <-chan struct{} {
	return s.open
}

// Transport returns a datagram sender over the tiles channel.
func (s *Sender) Transport() *transport.DataChannelSender {
	return transport.NewDataChannelSender(s.tiles)
}

// Connect initiates the WebRTC connection by creating and sending an offer.
func (s *Sender) Connect() error {
	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return err
	}

	if err := s.pc.SetLocalDescription(offer); err != nil {
		return err
	}

	offerJSON, err := json.Marshal(offer)
	if err != nil {
		return err
	}

	if err := s.sig.SendOffer(s.applianceID, offerJSON); err != nil {
		return fmt.Errorf("send offer: %w", err)
	}
	return nil
}

// HandleAnswer processes an incoming SDP answer.
func (s *Sender) HandleAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return err
	}
	return s.pc.SetRemoteDescription(answer)
}

// HandleICECandidate adds a remote ICE candidate.
func (s *Sender) HandleICECandidate(payload json.RawMessage) error {
	return addICECandidate(s.pc, payload)
}

// Close shuts down the peer connection.
func (s *Sender) Close() {
	if s.pc != nil {
		s.pc.Close()
	}
}
