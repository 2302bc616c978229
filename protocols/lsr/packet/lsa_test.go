package packet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	lsa := &LSA{
		ID:  "172.20.1.3",
		Seq: 7,
		Neighbors: map[string]NeighborRef{
			"r2": {IP: "172.20.2.3", Cost: 1},
		},
		Subnets: []string{"172.20.1.0/24"},
	}

	data, err := lsa.Encode()
	assert.NoError(t, err)

	got, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, lsa, got)
}

func TestDecodeMissingField(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1.1.1.1","seq":1,"vizinhos":{}}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLSA))
}

func TestDecodeNegativeCost(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1.1.1.1","seq":1,"vizinhos":{"r2":["1.1.1.2",-1]},"subnets":[]}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLSA))
}

func TestDecodeSeqZero(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1.1.1.1","seq":0,"vizinhos":{},"subnets":[]}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLSA))
}

func TestDecodeWrongStructuralType(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1.1.1.1","seq":1,"vizinhos":{"r2":"not-a-tuple"},"subnets":[]}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLSA))
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	lsa, err := Decode([]byte(`{"id":"1.1.1.1","seq":1,"vizinhos":{},"subnets":[],"extra":"ignored"}`))
	assert.NoError(t, err)
	assert.Equal(t, "1.1.1.1", lsa.ID)
}
