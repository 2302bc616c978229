package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	rtt map[string]time.Duration
	err map[string]error
}

func (f fakePinger) Ping(ctx context.Context, ip string) (time.Duration, error) {
	if err, ok := f.err[ip]; ok {
		return 0, err
	}
	return f.rtt[ip], nil
}

func TestProbeAllMarksFailuresInactiveWithoutAbortingTheRest(t *testing.T) {
	p := newProber(fakePinger{
		rtt: map[string]time.Duration{"10.0.0.2": 5 * time.Millisecond},
		err: map[string]error{"10.0.0.3": fmt.Errorf("timeout")},
	})

	neighbors := []types.Neighbor{
		{Name: "r2", IP: "10.0.0.2", Cost: 1, Configured: true},
		{Name: "r3", IP: "10.0.0.3", Cost: 1, Configured: true},
	}

	out := p.probeAll(context.Background(), neighbors)

	assert.True(t, out[0].Active)
	assert.Equal(t, 5, out[0].Cost)

	assert.False(t, out[1].Active)
	assert.Equal(t, 1, out[1].Cost) // untouched on failure
}
