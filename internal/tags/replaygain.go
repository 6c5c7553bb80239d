// Package tags reads replaygain metadata from audio files. The playback
// layer only needs the linear scale factor for the current track; full tag
// handling belongs to the library collaborators.
package tags

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// ReplayGain holds the replaygain fields of one track.
type ReplayGain struct {
	TrackGainDb  float64
	HasTrackGain bool
}

// Scale returns the linear volume scale factor, 1 when the track carries no
// replaygain information.
func (r ReplayGain) Scale() float64 {
	if !r.HasTrackGain {
		return 1
	}
	return GainToScale(r.TrackGainDb)
}

// GainToScale converts a replaygain dB value to a linear factor.
func GainToScale(db float64) float64 {
	return math.Pow(10, db/20)
}

// ParseGain parses a replaygain tag value such as "-6.50 dB".
func ParseGain(value string) (float64, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimSuffix(s, "dB")
	s = strings.TrimSuffix(s, "db")
	s = strings.TrimSpace(s)
	var db float64
	if _, err := fmt.Sscanf(s, "%f", &db); err != nil {
		return 0, fmt.Errorf("tags: parse gain %q: %w", value, err)
	}
	return db, nil
}

// ReadReplayGain reads the replaygain track gain from a file's tags.
// Files without tags, or without replaygain frames, yield a zero value (and
// no error): absent metadata means identity scaling.
func ReadReplayGain(path string) (ReplayGain, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReplayGain{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// No usable tags at all; treat as no replaygain.
		return ReplayGain{}, nil
	}
	return fromRaw(m.Raw()), nil
}

// fromRaw scans raw tag frames for a track gain. Vorbis comments use plain
// lowercase keys; ID3v2 TXXX frames surface under their description, so
// matching is by suffix, case-insensitively.
func fromRaw(raw map[string]interface{}) ReplayGain {
	var rg ReplayGain
	for key, value := range raw {
		if !strings.HasSuffix(strings.ToLower(key), "replaygain_track_gain") {
			continue
		}
		text, ok := value.(string)
		if !ok {
			text = fmt.Sprint(value)
		}
		db, err := ParseGain(text)
		if err != nil {
			continue
		}
		rg.TrackGainDb = db
		rg.HasTrackGain = true
		break
	}
	return rg
}
