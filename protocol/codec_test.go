package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineRoundTrip(t *testing.T) {
	in := Define{
		Players: []uint64{1, 2},
		Coalitions: []CoalitionWorth{
			{Members: []uint64{2, 1}, Worth: 30},
			{Members: []uint64{1}, Worth: 10},
		},
	}
	b, err := Encode(MsgDefine, in)
	require.NoError(t, err)

	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, MsgDefine, env.T)

	out, err := DecodeValid[Define](env)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeFromClientJSON(t *testing.T) {
	raw := []byte(`{"t":"query","p":{"player":3}}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)

	q, err := DecodeValid[Query](env)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), q.Player)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := Encode("", Query{})
	assert.Error(t, err)
	_, err = Encode(MsgQuery, nil)
	assert.Error(t, err)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	for _, raw := range []string{"", "{", `{"p":{}}`} {
		_, err := DecodeEnvelope([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	_, err := DecodePayload[Query](Envelope{T: MsgQuery})
	assert.Error(t, err)
}

func TestValidateDefine(t *testing.T) {
	tests := []struct {
		name string
		in   Define
		ok   bool
	}{
		{"valid", Define{Players: []uint64{1}}, true},
		{"no players", Define{}, false},
		{"duplicate players", Define{Players: []uint64{1, 1}}, false},
		{"too many players", Define{Players: make([]uint64, 65)}, false},
		{
			"oversized coalition",
			Define{Players: []uint64{1}, Coalitions: []CoalitionWorth{{Members: make([]uint64, 65)}}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateHello(t *testing.T) {
	assert.NoError(t, Validate(Hello{V: 1, Name: "ada"}))
	assert.Error(t, Validate(Hello{V: 2}))
}

func TestEncodeError(t *testing.T) {
	b := EncodeError(CodeNoGame, "no game defined", map[string]string{"room": "ABC"})

	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	require.Equal(t, MsgError, env.T)

	var e Error
	require.NoError(t, json.Unmarshal(env.P, &e))
	assert.Equal(t, CodeNoGame, e.Code)
	assert.Equal(t, "ABC", e.Metadata["room"])
}

func TestServerMessageKeys(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		keys    []string
	}{
		{"welcome", Welcome{V: Version, ClientID: "c1", Room: "ABC"}, []string{"v", "clientId", "room"}},
		{"defined", Defined{Players: []uint64{1}}, []string{"players", "coalitions"}},
		{"value", Value{Player: 1, Value: 2}, []string{"player", "value"}},
		{"allocation", Allocation{Values: []Value{{Player: 1}}, Surplus: 3, Sum: 3}, []string{"values", "surplus", "sum"}},
		{"error", Error{Code: CodeNoGame, Message: "m", Metadata: map[string]string{"room": "ABC"}}, []string{"code", "message", "metadata"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.payload)
			require.NoError(t, err)
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &fields))

			got := make([]string, 0, len(fields))
			for k := range fields {
				got = append(got, k)
			}
			assert.ElementsMatch(t, tt.keys, got)
		})
	}
}
