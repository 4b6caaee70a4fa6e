package peer

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/AirTile/internal/transport"
)

// Appliance manages the appliance side of one sender connection. The
// sender opens the tiles channel; the appliance answers and attaches it to
// the ingest receiver.
type Appliance struct {
	pc     *webrtc.PeerConnection
	sig    Signaler
	recv   *transport.DataChannelReceiver
	mu     sync.Mutex
	peerID string // the sender we're connected to
}

// NewAppliance creates an Appliance peer feeding recv.
func NewAppliance(sig Signaler, recv *transport.DataChannelReceiver) (*Appliance, error) {
	pc, err := NewPeerConnection()
	if err != nil {
		return nil, err
	}

	a := &Appliance{
		pc:   pc,
		sig:  sig,
		recv: recv,
	}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		log.Printf("data channel received: %s", dc.Label())
		if dc.Label() != transport.TilesLabel {
			dc.Close()
			return
		}
		dc.OnOpen(func() {
			log.Println("tiles data channel open")
		})
		recv.Attach(dc)
	})

	trickle(pc, sig, a.PeerID)
	return a, nil
}

// PeerID returns the sender this appliance answered.
func (a *Appliance) PeerID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peerID
}

// HandleOffer processes an incoming offer from a sender.
func (a *Appliance) HandleOffer(from string, payload json.RawMessage) error {
	a.mu.Lock()
	a.peerID = from
	a.mu.Unlock()

	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return err
	}

	if err := a.pc.SetRemoteDescription(offer); err != nil {
		return err
	}

	answer, err := a.pc.CreateAnswer(nil)
	if err != nil {
		return err
	}

	if err := a.pc.SetLocalDescription(answer); err != nil {
		return err
	}

	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return err
	}

	return a.sig.SendAnswer(from, answerJSON)
}

// HandleICECandidate adds a remote ICE candidate.
func (a *Appliance) HandleICECandidate(payload json.RawMessage) error {
	return addICECandidate(a.pc, payload)
}

// Close shuts down the peer connection.
func (a *Appliance) Close() {
	if a.pc != nil {
		a.pc.Close()
	}
}
