package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProps(t *testing.T) {
	props, err := ParseProps(`{"color":"red","size":42,"sale":true,"note":null}`)
	require.NoError(t, err)

	assert.Equal(t, "red", props["color"].String())
	assert.Equal(t, "42", props["size"].String())
	assert.Equal(t, "true", props["sale"].String())
	assert.Equal(t, "", props["note"].String())
}

func TestParseProps_NestedValuesKeepJSON(t *testing.T) {
	props, err := ParseProps(`{"items":["a","b"]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, props["items"].String())
}

func TestParseProps_EmptyAndMalformed(t *testing.T) {
	props, err := ParseProps("")
	require.NoError(t, err)
	assert.Nil(t, props)

	props, err = ParseProps("null")
	require.NoError(t, err)
	assert.Nil(t, props)

	_, err = ParseProps("{broken")
	assert.Error(t, err)
}

func TestPropsRoundTrip(t *testing.T) {
	raw := `{"color":"red","size":42,"sale":false}`
	props, err := ParseProps(raw)
	require.NoError(t, err)

	encoded, err := json.Marshal(props)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestNumberPropFormatting(t *testing.T) {
	// Whole floats must not grow a trailing ".0" between the ingest
	// path and histogram rows.
	assert.Equal(t, "42", NumberProp(42).String())
	assert.Equal(t, "4.25", NumberProp(4.25).String())
}

func TestIsInteractionType(t *testing.T) {
	for _, typ := range []string{
		EventTypeCustomEvent, EventTypeButtonClick, EventTypeCopy,
		EventTypeFormSubmit, EventTypeInputChange, EventTypeOutbound,
	} {
		assert.True(t, IsInteractionType(typ), typ)
	}
	assert.False(t, IsInteractionType(EventTypePageview))
	assert.False(t, IsInteractionType("scroll_depth"))
	assert.False(t, IsInteractionType(""))
}
