package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "negative with unit", input: "-6.50 dB", want: -6.5},
		{name: "positive with unit", input: "+2.10 dB", want: 2.1},
		{name: "no unit", input: "-3.2", want: -3.2},
		{name: "lowercase unit", input: "-1.0 db", want: -1.0},
		{name: "extra whitespace", input: "  -4.25 dB  ", want: -4.25},
		{name: "garbage", input: "loud", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGain(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestGainToScale(t *testing.T) {
	assert.InDelta(t, 1.0, GainToScale(0), 1e-9)
	assert.InDelta(t, 0.5, GainToScale(-6.0206), 1e-4)
	assert.InDelta(t, 2.0, GainToScale(6.0206), 1e-4)
}

func TestReplayGain_Scale(t *testing.T) {
	assert.InDelta(t, 1.0, ReplayGain{}.Scale(), 1e-9, "absent metadata means identity")

	rg := ReplayGain{TrackGainDb: -6.0206, HasTrackGain: true}
	assert.InDelta(t, 0.5, rg.Scale(), 1e-4)
}

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want ReplayGain
	}{
		{
			name: "vorbis comment key",
			raw:  map[string]interface{}{"replaygain_track_gain": "-7.3 dB"},
			want: ReplayGain{TrackGainDb: -7.3, HasTrackGain: true},
		},
		{
			name: "id3 txxx description key",
			raw:  map[string]interface{}{"TXXX/REPLAYGAIN_TRACK_GAIN": "-2.00 dB"},
			want: ReplayGain{TrackGainDb: -2, HasTrackGain: true},
		},
		{
			name: "album gain ignored",
			raw:  map[string]interface{}{"replaygain_album_gain": "-5.0 dB"},
			want: ReplayGain{},
		},
		{
			name: "unparseable value ignored",
			raw:  map[string]interface{}{"replaygain_track_gain": "n/a"},
			want: ReplayGain{},
		},
		{
			name: "no frames",
			raw:  map[string]interface{}{"title": "Song"},
			want: ReplayGain{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromRaw(tt.raw)
			assert.Equal(t, tt.want.HasTrackGain, got.HasTrackGain)
			assert.InDelta(t, tt.want.TrackGainDb, got.TrackGainDb, 1e-9)
		})
	}
}

func TestReadReplayGain_MissingFile(t *testing.T) {
	_, err := ReadReplayGain("/nonexistent/file.flac")
	assert.Error(t, err)
}
