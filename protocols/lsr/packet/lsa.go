// Package packet implements the wire encoding of link-state
// advertisements: a strict JSON schema chosen for compatibility with
// already-deployed peers, field names included.
package packet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxDatagramBytes is the largest LSA payload the wire format allows.
// Larger encodings are a programming error (too many neighbors/subnets
// for a single UDP datagram, no fragmentation is supported) and larger
// inbound datagrams are rejected before they are even parsed.
const MaxDatagramBytes = 4096

// ErrInvalidLSA is the sentinel wrapped by every decode validation
// failure; callers match it with errors.Is to distinguish malformed
// input from I/O errors.
var ErrInvalidLSA = errors.New("invalid LSA")

// NeighborRef is one entry of an LSA's neighbor map: the neighbor's IP
// and the cost the originator assigns it. It marshals as the
// two-element tuple ["ip", cost] the wire format requires, not as an
// object.
type NeighborRef struct {
	IP   string
	Cost int
}

// MarshalJSON encodes the ref as ["ip", cost].
func (n NeighborRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{n.IP, n.Cost})
}

// UnmarshalJSON decodes ["ip", cost], rejecting anything else in
// structure or a negative cost. cost must be a JSON integer; a
// fractional cost is rejected.
func (n *NeighborRef) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("%w: neighbor entry must be an array: %v", ErrInvalidLSA, err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("%w: neighbor entry must have exactly 2 elements, got %d", ErrInvalidLSA, len(tuple))
	}

	var ip string
	if err := json.Unmarshal(tuple[0], &ip); err != nil {
		return fmt.Errorf("%w: neighbor ip must be a string: %v", ErrInvalidLSA, err)
	}

	var cost int
	if err := json.Unmarshal(tuple[1], &cost); err != nil {
		return fmt.Errorf("%w: neighbor cost must be an integer: %v", ErrInvalidLSA, err)
	}
	if cost < 0 {
		return fmt.Errorf("%w: neighbor cost must not be negative, got %d", ErrInvalidLSA, cost)
	}

	n.IP = ip
	n.Cost = cost
	return nil
}

// LSA is one originator's view of its direct neighbors and locally
// connected subnets, plus a monotonic sequence number. Field names are
// fixed for wire compatibility and do not follow Go naming convention.
type LSA struct {
	ID        string                 `json:"id"`
	Seq       uint32                 `json:"seq"`
	Neighbors map[string]NeighborRef `json:"vizinhos"`
	Subnets   []string               `json:"subnets"`
}

var requiredFields = []string{"id", "seq", "vizinhos", "subnets"}

// Decode parses and validates an inbound datagram. Unknown fields are
// ignored; any missing required field, structural type mismatch, or
// negative cost is reported as ErrInvalidLSA.
func Decode(data []byte) (*LSA, error) {
	if len(data) > MaxDatagramBytes {
		return nil, fmt.Errorf("%w: payload is %d bytes, exceeds %d byte limit", ErrInvalidLSA, len(data), MaxDatagramBytes)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidLSA, err)
	}

	for _, field := range requiredFields {
		if _, ok := probe[field]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrInvalidLSA, field)
		}
	}

	var lsa LSA
	if err := json.Unmarshal(data, &lsa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLSA, err)
	}

	if lsa.ID == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidLSA)
	}
	if lsa.Seq < 1 {
		return nil, fmt.Errorf("%w: seq must be >= 1, got %d", ErrInvalidLSA, lsa.Seq)
	}

	return &lsa, nil
}

// Encode serializes the LSA to its wire form, failing if the result
// would not fit in a single datagram.
func (l *LSA) Encode() ([]byte, error) {
	if l.Neighbors == nil {
		l.Neighbors = map[string]NeighborRef{}
	}
	if l.Subnets == nil {
		l.Subnets = []string{}
	}

	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encoding LSA: %w", err)
	}
	if len(data) > MaxDatagramBytes {
		return nil, fmt.Errorf("encoded LSA is %d bytes, exceeds %d byte limit", len(data), MaxDatagramBytes)
	}

	return data, nil
}

// Clone returns a deep copy, used whenever a stored LSA is handed to a
// caller outside the LSDB's lock.
func (l *LSA) Clone() *LSA {
	c := &LSA{
		ID:        l.ID,
		Seq:       l.Seq,
		Neighbors: make(map[string]NeighborRef, len(l.Neighbors)),
		Subnets:   append([]string(nil), l.Subnets...),
	}
	for k, v := range l.Neighbors {
		c.Neighbors[k] = v
	}

	return c
}
