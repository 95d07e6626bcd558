package prompt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_UnknownTotalDrawsNothing(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress("Downloading", &out, true)
	p.Update(10, -1)
	p.Update(20, 0)
	p.Stop()
	assert.Nil(t, p.bar)
	assert.Zero(t, p.current)
}

func TestProgress_TracksDone(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress("Importing", &out, false)
	f := p.Func()
	f(1, 4)
	f(3, 4)
	f(3, 4)
	assert.Equal(t, int64(3), p.current)
	if assert.NotNil(t, p.bar) {
		assert.Equal(t, 3, p.bar.Current)
	}
	p.Stop()
	assert.Nil(t, p.bar)
}
