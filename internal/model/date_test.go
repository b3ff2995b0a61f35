package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2020-03-05", d.String())
	assert.True(t, d.Equal(NewDate(2020, time.March, 5)))

	_, err = ParseDate("05-03-2020")
	assert.Error(t, err)
	_, err = ParseDate("2020-03-05T10:00:00Z")
	assert.Error(t, err)
}

func TestDateJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	out, err := json.Marshal(wrapper{Date: NewDate(1999, time.October, 12)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"1999-10-12"}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"1999-10-12"}`), &in))
	assert.True(t, in.Date.Equal(NewDate(1999, time.October, 12)))

	var zero wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &zero))
	assert.True(t, zero.Date.IsZero())
}
