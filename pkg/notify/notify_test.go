package notify_test

import (
	"errors"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/notify"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	sent []string
	err  error
}

func (r *recorder) Notify(title, message string) error {
	r.sent = append(r.sent, title+": "+message)
	return r.err
}

func TestNew(t *testing.T) {
	assert.IsType(t, notify.Desktop{}, notify.New(true))
	assert.IsType(t, notify.Nop{}, notify.New(false))
}

func TestSend(t *testing.T) {
	r := &recorder{}
	notify.Send(r, "Download finished", "Fortnite.ipa")
	assert.Equal(t, []string{"Download finished: Fortnite.ipa"}, r.sent)
}

func TestSend_FailureIsSwallowed(t *testing.T) {
	r := &recorder{err: errors.New("no notification center")}
	assert.NotPanics(t, func() {
		notify.Send(r, "Import finished", "12 files")
	})
	assert.Len(t, r.sent, 1)
}

func TestSend_NilNotifier(t *testing.T) {
	assert.NotPanics(t, func() { notify.Send(nil, "t", "m") })
	assert.NoError(t, notify.Nop{}.Notify("t", "m"))
}
