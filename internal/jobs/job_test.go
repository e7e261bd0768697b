package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorValidate(t *testing.T) {
	tests := []struct {
		name    string
		locator Locator
		wantErr bool
	}{
		{"explicit job id", Locator{JobID: "abc"}, false},
		{"channel and date", Locator{ChannelID: "c1", Date: "2024-01-01"}, false},
		{"both modes", Locator{JobID: "abc", ChannelID: "c1", Date: "2024-01-01"}, false},
		{"empty", Locator{}, true},
		{"channel without date", Locator{ChannelID: "c1"}, true},
		{"date without channel", Locator{Date: "2024-01-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.locator.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocatorName(t *testing.T) {
	assert.Equal(t, "upsertVideos-abc", Locator{JobID: "abc"}.Name())
	assert.Equal(t, "upsertVideos-c1-2024-01-01",
		Locator{ChannelID: "c1", Date: "2024-01-01"}.Name())
	// An explicit job id wins when both modes are present.
	assert.Equal(t, "upsertVideos-abc",
		Locator{JobID: "abc", ChannelID: "c1", Date: "2024-01-01"}.Name())
}

func TestLocatorExactKey(t *testing.T) {
	key, ok := Locator{JobID: "abc"}.ExactKey()
	assert.True(t, ok)
	assert.Equal(t, "abc", key)

	_, ok = Locator{ChannelID: "c1", Date: "2024-01-01"}.ExactKey()
	assert.False(t, ok)
}

func TestDecodePayload(t *testing.T) {
	job := &Job{Payload: `{"channelId":"c1","videos":[{"id":"v1","channelId":"c1","snippet":{"title":"t"}}]}`}

	p, err := job.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "c1", p.ChannelID)
	require.Len(t, p.Videos, 1)
	assert.Equal(t, "v1", p.Videos[0].ID)
	assert.JSONEq(t, `{"title":"t"}`, string(p.Videos[0].Snippet))
}

func TestDecodePayloadMalformed(t *testing.T) {
	job := &Job{Payload: `{"videos": 42}`}

	_, err := job.DecodePayload()
	assert.Error(t, err)
}

func TestSummaryEncode(t *testing.T) {
	s := &Summary{
		Processed: 2,
		Failed:    1,
		Outcomes: []Outcome{
			{ID: "v1", OK: true},
			{ID: "v2", OK: false, Error: "boom"},
		},
	}

	var decoded Summary
	require.NoError(t, json.Unmarshal([]byte(s.Encode()), &decoded))
	assert.Equal(t, *s, decoded)
}
