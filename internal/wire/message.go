// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package wire defines the control-message envelope exchanged between
// daemons and its length-prefixed JSON encoding over UDP.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"grimm.is/flywall/internal/errors"
	"grimm.is/flywall/internal/routegraph"
)

// Kind enumerates the recognized control-message kinds.
type Kind string

const (
	KindHello     Kind = "hello"
	KindOspfLsa   Kind = "ospf_lsa"
	KindDdrLsa    Kind = "ddr_lsa"
	KindRipUpdate Kind = "rip_update"
)

// StateClass classifies what a message carries, for descriptor stamping.
type StateClass string

const (
	StateLiveness          StateClass = "liveness"
	StateTopology          StateClass = "topology"
	StateDistanceVector    StateClass = "distance_vector"
	StateNeighborFastState StateClass = "neighbor_fast_state"
	StateOpaque            StateClass = "opaque"
)

// Scope describes how far a message propagates.
type Scope string

const (
	ScopeOneHop      Scope = "one_hop"
	ScopeFloodDomain Scope = "flood_domain"
	ScopeRouterDomain Scope = "router_domain"
)

// Mode describes the origination cadence of a message class.
type Mode string

const (
	ModePeriodic  Mode = "periodic"
	ModeTriggered Mode = "triggered"
	ModeHybrid    Mode = "hybrid"
)

// Descriptor is the backward-compatible metadata stamped on every
// control message. A missing descriptor on ingress decodes to
// DefaultDescriptor().
type Descriptor struct {
	SchemaVersion uint16      `json:"schema_version"`
	StateClass    *StateClass `json:"state_class,omitempty"`
	Scope         *Scope      `json:"scope,omitempty"`
	Mode          *Mode       `json:"mode,omitempty"`
	MaxAgeS       *uint32     `json:"max_age_s,omitempty"`
}

// DefaultDescriptor is the decode result for a missing descriptor field.
func DefaultDescriptor() Descriptor {
	return Descriptor{SchemaVersion: 1}
}

// descriptorFor stamps a Descriptor appropriate to kind, per the table in
// the exchange scheduler's origination rules.
func descriptorFor(kind Kind) Descriptor {
	d := DefaultDescriptor()
	sc := StateLiveness
	sp := ScopeOneHop
	md := ModePeriodic
	switch kind {
	case KindHello:
		sc, sp, md = StateLiveness, ScopeOneHop, ModePeriodic
	case KindOspfLsa, KindDdrLsa:
		sc, sp, md = StateTopology, ScopeFloodDomain, ModeHybrid
	case KindRipUpdate:
		sc, sp, md = StateDistanceVector, ScopeOneHop, ModeHybrid
	}
	d.StateClass = &sc
	d.Scope = &sp
	d.Mode = &md
	return d
}

// Message is the decoded wire envelope.
type Message struct {
	Protocol    string                 `json:"protocol"`
	Kind        Kind                   `json:"kind"`
	SrcRouterID uint32                 `json:"src_router_id"`
	Seq         uint64                 `json:"seq"`
	Descriptor  *Descriptor            `json:"descriptor,omitempty"`
	Payload     map[string]interface{} `json:"payload"`
	Ts          float64                `json:"ts"`
	MsgID       uuid.UUID              `json:"msg_id,omitempty"`
}

// EffectiveDescriptor returns m.Descriptor or DefaultDescriptor() if absent.
func (m Message) EffectiveDescriptor() Descriptor {
	if m.Descriptor == nil {
		return DefaultDescriptor()
	}
	return *m.Descriptor
}

// NewMessage builds a message stamped with the descriptor appropriate to
// kind, optionally overridden by scopeOverride (nil to use the default).
func NewMessage(protocol string, kind Kind, src routegraph.RouterID, seq uint64, payload map[string]interface{}, ts float64, scopeOverride *Scope) Message {
	d := descriptorFor(kind)
	if scopeOverride != nil {
		d.Scope = scopeOverride
	}
	return Message{
		Protocol:    protocol,
		Kind:        kind,
		SrcRouterID: uint32(src),
		Seq:         seq,
		Descriptor:  &d,
		Payload:     payload,
		Ts:          ts,
		MsgID:       uuid.New(),
	}
}

// maxFrameLen bounds a single length-prefixed datagram payload.
const maxFrameLen = 64 * 1024

// Encode writes m as a 4-byte big-endian length prefix followed by its
// JSON encoding.
func Encode(w io.Writer, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "marshal wire message")
	}
	if len(body) > maxFrameLen {
		return errors.Errorf(errors.KindInvariant, "encoded message exceeds %d bytes", maxFrameLen)
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return errors.Wrap(err, errors.KindIOTransient, "write frame length")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, errors.KindIOTransient, "write frame body")
	}
	return nil
}

// EncodeDatagram returns the length-prefixed bytes for a single UDP send.
func EncodeDatagram(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "marshal wire message")
	}
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(len(body)))
	copy(out[4:], body)
	return out, nil
}

// DecodeDatagram parses a single length-prefixed UDP payload. Decode
// errors are classified errors.KindDecodeDrop so callers can log-and-drop.
func DecodeDatagram(buf []byte) (Message, error) {
	if len(buf) < 4 {
		return Message{}, errors.New(errors.KindDecodeDrop, "datagram shorter than length prefix")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	if int(n) != len(buf)-4 {
		return Message{}, errors.Errorf(errors.KindDecodeDrop, "length prefix %d does not match payload %d", n, len(buf)-4)
	}
	var m Message
	if err := json.Unmarshal(buf[4:], &m); err != nil {
		return Message{}, errors.Wrap(err, errors.KindDecodeDrop, "unmarshal wire message")
	}
	if m.Protocol == "" {
		return Message{}, errors.New(errors.KindDecodeDrop, "missing protocol field")
	}
	return m, nil
}
