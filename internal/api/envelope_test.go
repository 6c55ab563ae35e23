package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EnvelopedBodyPassesThrough(t *testing.T) {
	body := []byte(`{"success":false,"data":{"id":"d-1"},"message":"insufficient balance"}`)
	env := Normalize(400, body)

	assert.False(t, env.Success)
	assert.Equal(t, 400, env.Status)
	assert.Equal(t, "insufficient balance", env.Message)
	assert.JSONEq(t, `{"id":"d-1"}`, string(env.Data))
}

func TestNormalize_BareBodyIsWrapped(t *testing.T) {
	env := Normalize(200, []byte(`{"id":"ngo-7","name":"Helping Hands"}`))

	assert.True(t, env.Success)
	assert.Empty(t, env.Message)

	var got struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, env.DecodeData(&got))
	assert.Equal(t, "ngo-7", got.ID)
}

func TestNormalize_BareErrorBodyKeepsMessage(t *testing.T) {
	env := Normalize(404, []byte(`{"message":"campaign not found"}`))

	assert.False(t, env.Success)
	assert.Equal(t, "campaign not found", env.Message)
}

func TestNormalize_EmptyAndNonJSONBodies(t *testing.T) {
	empty := Normalize(204, nil)
	assert.True(t, empty.Success)
	assert.False(t, empty.HasData())

	text := Normalize(502, []byte("Bad Gateway"))
	assert.False(t, text.Success)
	assert.Equal(t, "Bad Gateway", text.Message)
	assert.False(t, text.HasData())
}

func TestNormalize_SuccessFlagWinsOverStatus(t *testing.T) {
	// A backend that reports success:true with an odd status is trusted.
	env := Normalize(207, []byte(`{"success":true,"data":null}`))
	assert.True(t, env.Success)
	assert.False(t, env.HasData())
}

func TestMarshalData(t *testing.T) {
	null, err := MarshalData(nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), null)

	data, err := MarshalData(map[string]int{"total": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(data))
}

func TestDecodeData_NoData(t *testing.T) {
	env := &Envelope{Success: true}
	var v any
	assert.Error(t, env.DecodeData(&v))
}
