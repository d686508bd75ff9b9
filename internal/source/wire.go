package source

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/verte-zerg/strafetrakk/internal/binding"
	"github.com/verte-zerg/strafetrakk/internal/model"
)

// Record is the wire form of a timing event, one JSON object per line.
type Record struct {
	Key                string   `json:"key"`
	PairKey            *string  `json:"pair_key"`
	TimeSinceReleaseMs *float64 `json:"time_since_release_ms"`
	TimestampMs        *float64 `json:"timestamp_ms,omitempty"`
}

// Event converts the record to a TimingEvent with canonical key names.
func (r Record) Event() model.TimingEvent {
	ev := model.TimingEvent{Key: binding.KeyName(r.Key), DeltaMs: r.TimeSinceReleaseMs}
	if r.PairKey != nil {
		pair := binding.KeyName(*r.PairKey)
		ev.PairKey = &pair
	}
	return ev
}

// DecodeRecord parses one wire line.
func DecodeRecord(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if rec.Key == "" {
		return Record{}, fmt.Errorf("failed to decode event: missing key")
	}
	return rec, nil
}

// WriteRecord writes ev as one wire line. timestampMs may be nil.
func WriteRecord(w io.Writer, ev model.TimingEvent, timestampMs *float64) error {
	data, err := json.Marshal(Record{
		Key:                ev.Key,
		PairKey:            ev.PairKey,
		TimeSinceReleaseMs: ev.DeltaMs,
		TimestampMs:        timestampMs,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}
