package xmljson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjwatson/stream-proxy/internal/stage"
)

func TestXMLToJSON_RootPreserving(t *testing.T) {
	in := []byte(`<order id="42"><item>widget</item><item>gadget</item></order>`)
	emitted, _, err := xmlToJSON{}.Push(stage.StateActive, in)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(emitted, &got))

	order, ok := got["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", order["@id"])
	assert.Equal(t, []any{"widget", "gadget"}, order["item"])
}

func TestJSONToXML_RootPreserving(t *testing.T) {
	in := []byte(`{"order":{"@id":"42","item":["widget","gadget"]}}`)
	emitted, _, err := jsonToXML{}.Push(stage.StateActive, in)
	require.NoError(t, err)
	assert.Contains(t, string(emitted), `<order id="42">`)
	assert.Contains(t, string(emitted), `<item>widget</item>`)
	assert.Contains(t, string(emitted), `<item>gadget</item>`)
}

func TestJSONToXML_RejectsMultipleRootKeys(t *testing.T) {
	in := []byte(`{"a":1,"b":2}`)
	_, _, err := jsonToXML{}.Push(stage.StateActive, in)
	assert.Error(t, err)
}

func TestXMLJSON_RoundTripPreservesRootAndText(t *testing.T) {
	in := []byte(`<greeting>hello</greeting>`)
	mid, _, err := xmlToJSON{}.Push(stage.StateActive, in)
	require.NoError(t, err)

	out, _, err := jsonToXML{}.Push(stage.StateActive, mid)
	require.NoError(t, err)
	assert.Equal(t, string(in), string(out))
}
