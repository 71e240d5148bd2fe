package transport

import (
	"testing"
	"time"

	"NetPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReading() model.Reading {
	return model.NewReading(1, 2.5, 20, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, name := range []string{"json", "proto", "text"} {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			data, err := codec.Encode(sampleReading())
			require.NoError(t, err)

			got, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, sampleReading().Content, got.Content)
			assert.InDelta(t, 2.5, got.DownloadMbps, 1e-9)
		})
	}
}

func TestJSONCodec_WireShape(t *testing.T) {
	data, err := JSONCodec{}.Encode(sampleReading())
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"Upload: 1.00 Mbps, Download: 2.50 Mbps, Packet Loss: 20.00%"}`, string(data))
}

func TestCodecs_DecodeErrors(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("{"))
	assert.Error(t, err)

	_, err = JSONCodec{}.Decode([]byte(`{"content":"hello"}`))
	assert.Error(t, err)

	_, err = ProtoCodec{}.Decode([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)

	_, err = TextCodec{}.Decode([]byte("Upload:"))
	assert.Error(t, err)
}

func TestNewCodec_Unknown(t *testing.T) {
	_, err := NewCodec("xml")
	assert.Error(t, err)

	codec, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, "json", codec.Name())
}
