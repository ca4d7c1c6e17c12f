package modemio

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/txqueue"
)

func TestWriteFrameThenReadFrameRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	in := txqueue.Frame{Tag: txqueue.TagData, RSSI: 42, Payload: []byte{1, 2, 3, 4}}

	require.NoError(t, writeFrame(&buf, in))
	out, err := readFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestWriteFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	in := txqueue.Frame{Tag: txqueue.TagEOT, RSSI: 0}

	require.NoError(t, writeFrame(&buf, in))
	out, err := readFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, txqueue.TagEOT, out.Tag)
	require.Empty(t, out.Payload)
}

func TestFakePortPumpDeliversFedFrames(t *testing.T) {
	port := NewFakePort()
	ctx, cancel := context.WithCancel(context.Background())
	into := make(chan txqueue.Frame, 4)

	done := make(chan error, 1)
	go func() { done <- Pump(ctx, port, into) }()

	port.Feed(txqueue.Frame{Tag: txqueue.TagData, Payload: []byte{9}})
	select {
	case f := <-into:
		require.Equal(t, byte(9), f.Payload[0])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pumped frame")
	}

	cancel()
	require.NoError(t, port.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pump did not stop after port close")
	}
}

func TestFakePortWriteFrameRecordsWritten(t *testing.T) {
	port := NewFakePort()
	require.NoError(t, port.WriteFrame(txqueue.Frame{Tag: txqueue.TagNoData}))
	require.Len(t, port.Written, 1)

	require.NoError(t, port.Close())
	require.ErrorIs(t, port.WriteFrame(txqueue.Frame{}), ErrClosed)
}
