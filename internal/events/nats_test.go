package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"goimpact/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	closed  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return f.err
}
func (f *fakeConn) FlushWithContext(context.Context) error { return nil }
func (f *fakeConn) Close()                                 { f.closed = true }

var _ ports.EventPublisher = (*NATSPublisher)(nil)
var _ ports.EventPublisher = Noop{}

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, log: zerolog.Nop()}

	err := p.Publish(context.Background(), ports.SubjectRunCompleted, ports.RunCompleted{RunID: "r1", ScenarioRows: 3})
	require.NoError(t, err)
	assert.Equal(t, "goimpact.run.completed", fc.subject)

	var got ports.RunCompleted
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 3, got.ScenarioRows)

	p.Close()
	assert.True(t, fc.closed)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	fc := &fakeConn{err: errors.New("no responders")}
	p := &NATSPublisher{conn: fc, log: zerolog.Nop()}
	err := p.Publish(context.Background(), "x", map[string]int{"a": 1})
	assert.ErrorContains(t, err, "no responders")
}
