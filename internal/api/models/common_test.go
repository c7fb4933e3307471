package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/api/models"
)

func TestTimestamp_JSON(t *testing.T) {
	local := time.Date(2026, 3, 14, 9, 30, 15, 500, time.FixedZone("CET", 3600))

	raw, err := json.Marshal(models.Timestamp(local))
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14T08:30:15Z"`, string(raw))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Time().Equal(local.Truncate(time.Second)))
}

func TestTimestamp_UnmarshalEmpty(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.Time().IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.Time().IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestNewTimestamp(t *testing.T) {
	assert.Nil(t, models.NewTimestamp(time.Time{}))

	now := time.Now()
	ts := models.NewTimestamp(now)
	require.NotNil(t, ts)
	assert.True(t, ts.Time().Equal(now))
}
