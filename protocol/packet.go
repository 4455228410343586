package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/feltnet/felt/state"
	"github.com/google/uuid"
)

type Kind string

const (
	// KindVector frames carry a neighbour's distance vector.
	KindVector Kind = "vector"
	// KindTraffic frames are forwarded hop by hop towards Dst.
	KindTraffic Kind = "traffic"
)

// Packet is the unit framed onto links. Content is kind-specific; Hops
// records the nodes a traffic frame has visited.
type Packet struct {
	ID      uuid.UUID       `json:"id"`
	Kind    Kind            `json:"kind"`
	Src     state.Addr      `json:"src"`
	Dst     state.Addr      `json:"dst"`
	Content json.RawMessage `json:"content,omitempty"`
	Hops    []state.Addr    `json:"hops,omitempty"`
}

// NewVector builds a routing frame carrying v, addressed to the neighbour
// it will be sent to.
func NewVector(src, dst state.Addr, v state.Vector) (*Packet, error) {
	content, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Packet{
		ID:      uuid.New(),
		Kind:    KindVector,
		Src:     src,
		Dst:     dst,
		Content: content,
	}, nil
}

// NewProbe builds a traffic frame used to trace the forwarding path from
// src to dst.
func NewProbe(src, dst state.Addr) *Packet {
	return &Packet{
		ID:   uuid.New(),
		Kind: KindTraffic,
		Src:  src,
		Dst:  dst,
	}
}

// Vector decodes the distance vector carried by a KindVector packet. Costs
// are clamped on decode, so a malformed entry fails the whole frame while an
// oversized cost degrades to Infinity.
func (p *Packet) Vector() (state.Vector, error) {
	if p.Kind != KindVector {
		return nil, fmt.Errorf("packet is %s, not %s", p.Kind, KindVector)
	}
	var v state.Vector
	if err := json.Unmarshal(p.Content, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (p Packet) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *Packet) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}
