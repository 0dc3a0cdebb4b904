// FILE: lixenwraith/mapconf/snapshot.go
package mapconf

import (
	"fmt"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// snapshotVersion is bumped when the envelope layout changes.
const snapshotVersion = 1

// snapshot is the envelope written by Snapshot: a loaded store handed to a
// worker process so the worker does not re-read configuration files.
type snapshot struct {
	Version     int            `cbor:"1,keyasint"`
	Environment string         `cbor:"2,keyasint"`
	Data        map[string]any `cbor:"3,keyasint"`
}

var (
	// snapshotEnc uses Core Deterministic Encoding: the same tree always
	// produces the same bytes.
	snapshotEnc cbor.EncMode
	// snapshotDec decodes untyped tables as map[string]any so a restored
	// tree looks like one parsed from a file.
	snapshotDec cbor.DecMode
)

func init() {
	var err error
	snapshotEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("mapconf: CBOR encoder initialization failed: " + err.Error())
	}
	snapshotDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("mapconf: CBOR decoder initialization failed: " + err.Error())
	}
}

// Snapshot encodes the store's environment and tree. Integers restore as
// int64 and tables as map[string]any. Leaves CBOR has no faithful form for
// are written as text, so a time.Duration restores as "1m30s" and a
// time.Time as an RFC 3339 string. TOML local times keep their TOML spelling.
func (s *Store) Snapshot() ([]byte, error) {
	s.mutex.RLock()
	env := s.environment
	data, _ := snapshotValue(s.data).(map[string]any)
	s.mutex.RUnlock()

	out, err := snapshotEnc.Marshal(snapshot{
		Version:     snapshotVersion,
		Environment: env,
		Data:        data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrSnapshot, err)
	}
	return out, nil
}

// Restore replaces the store's environment and tree with a snapshot.
func (s *Store) Restore(b []byte) error {
	var snap snapshot
	if err := snapshotDec.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSnapshot, snap.Version)
	}

	env := snap.Environment
	if env == "" {
		env = DefaultEnvironment
	}
	s.SetEnvironment(env)
	s.SetData(snap.Data)
	return nil
}

// snapshotValue copies v, rewriting leaves that would not survive a CBOR
// round trip with their original meaning.
func snapshotValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return formatTime(t)
	case time.Duration:
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = snapshotValue(item)
		}
		return out
	}

	if table := asTable(v); table != nil {
		out := make(map[string]any, len(table))
		for k, item := range table {
			out[k] = snapshotValue(item)
		}
		return out
	}
	return v
}

// formatTime renders t as TOML would. The TOML decoder marks local date-times,
// dates and times with these zone names.
func formatTime(t time.Time) string {
	switch t.Location().String() {
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	case "date-local":
		return t.Format(time.DateOnly)
	case "time-local":
		return t.Format("15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// FromSnapshot creates a Store from a snapshot.
func FromSnapshot(b []byte) (*Store, error) {
	s := New()
	if err := s.Restore(b); err != nil {
		return nil, err
	}
	return s, nil
}
