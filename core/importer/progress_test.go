package importer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_PublishNeverBlocks(t *testing.T) {
	p := NewProgress()
	// Nobody is consuming; publishing far past the buffer must not stall.
	for i := 0; i < progressBuffer*4; i++ {
		p.Publish(PhaseProcessing, fmt.Sprintf("step %d", i), float64(i))
	}

	latest, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("step %d", progressBuffer*4-1), latest.Message)

	// The buffer kept the newest updates, dropping the oldest.
	p.Close()
	var got []Update
	for u := range p.Updates() {
		got = append(got, u)
	}
	require.Len(t, got, progressBuffer)
	assert.Equal(t, latest.Message, got[len(got)-1].Message)
}

func TestProgress_NilIsSafe(t *testing.T) {
	var p *Progress
	p.Publish(PhaseProcessing, "ignored", 1)
	p.Fail(assert.AnError)
	p.Close()
	_, ok := p.Latest()
	assert.False(t, ok)
}

func TestProgress_TerminalUpdates(t *testing.T) {
	p := NewProgress()
	p.Publish(PhaseValidating, "", 0)
	p.Complete(&Result{Created: 2})
	p.Close()

	var final Update
	for u := range p.Updates() {
		final = u
	}
	assert.Equal(t, PhaseCompleted, final.Phase)
	require.NotNil(t, final.Result)
	assert.Equal(t, 2, final.Result.Created)
	assert.Equal(t, float64(100), final.Percent)
}
