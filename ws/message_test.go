package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageInjectsType(t *testing.T) {
	raw := BuildMessage("RoomCreated", map[string]interface{}{"roomId": "r1"})

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "RoomCreated", out["type"])
	assert.Equal(t, "r1", out["roomId"])

	raw = BuildMessage("Ping", nil)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Ping", out["type"])
}

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"JoinRoom","data":{"roomId":"abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, "JoinRoom", env.Type)
	assert.Equal(t, "abc", env.Data["roomId"])

	_, err = ParseEnvelope([]byte("不是json"))
	assert.Error(t, err)
}

func TestDecodePayloadStringToInt(t *testing.T) {
	type req struct {
		Row      int    `json:"row"`
		RoomID   string `json:"roomId"`
		EntryFee int64  `json:"entryFee"`
	}

	var out req
	err := DecodePayload(map[string]interface{}{
		"row":      "2", // 前端偶尔把数字发成字符串
		"roomId":   "r1",
		"entryFee": float64(50), // json 数字解出来是 float64
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Row)
	assert.Equal(t, "r1", out.RoomID)
	assert.Equal(t, int64(50), out.EntryFee)
}
