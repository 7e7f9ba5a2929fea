package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    EventKind
		wantErr bool
	}{
		{name: "valid envelope", data: `{"type":"voice:join","roomId":"r1"}`, want: EvVoiceJoin},
		{name: "missing type", data: `{"roomId":"r1"}`, wantErr: true},
		{name: "not json", data: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Kind([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestUnmarshal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid voice join",
			data: `{"type":"voice:join","roomId":"r1","userId":"u1","anonymousId":"shade","peerId":"p1"}`,
		},
		{
			name:    "missing peer id",
			data:    `{"type":"voice:join","roomId":"r1","userId":"u1","anonymousId":"shade"}`,
			wantErr: true,
		},
		{
			name:    "empty room id",
			data:    `{"type":"voice:join","roomId":"","userId":"u1","anonymousId":"shade","peerId":"p1"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p VoiceJoin
			err := Unmarshal([]byte(tt.data), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "r1", p.RoomID)
			assert.Equal(t, "p1", p.PeerID)
		})
	}
}

func TestEncode_TagsPayload(t *testing.T) {
	frame, err := Encode(EvNewDM, struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}{"m1", "hello"})
	require.NoError(t, err)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(frame, &ev))
	assert.Equal(t, string(EvNewDM), ev["type"])
	assert.Equal(t, "m1", ev["id"])
	assert.Equal(t, "hello", ev["content"])
}

func TestEncode_NilPayload(t *testing.T) {
	frame, err := Encode(EvVoiceUserLeft, nil)
	require.NoError(t, err)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(frame, &ev))
	assert.Equal(t, string(EvVoiceUserLeft), ev["type"])
}
