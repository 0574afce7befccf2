package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lazypower/revisit/internal/record"
)

// snapshotSchema describes the portable data file:
//
//	{settings: {unusedDaysLimit, weeklyReviewCount},
//	 records: {[path]: {filename, ignored, lastAccessed}}}
//
// lastAccessed may be null, 0, "" (never accessed), an RFC 3339 string or
// Unix milliseconds. weeklyReviewCount may be absent in older files.
const snapshotSchema = `{
	"type": "object",
	"required": ["settings", "records"],
	"properties": {
		"settings": {
			"type": "object",
			"required": ["unusedDaysLimit"],
			"properties": {
				"unusedDaysLimit":   {"type": "integer", "minimum": 0},
				"weeklyReviewCount": {"type": "integer"}
			}
		},
		"records": {"$ref": "#/definitions/records"}
	},
	"definitions": ` + recordsDefinition + `
}`

// pluginSchema describes the editor plugin's own data file:
//
//	{settings: {UNUSED_DAYS_LIMIT}, unusedNotes: {[path]: {...}}}
//
// The plugin's settings tab saved the limit as typed, so it may be a
// numeric string.
const pluginSchema = `{
	"type": "object",
	"required": ["unusedNotes"],
	"properties": {
		"settings": {
			"type": "object",
			"properties": {
				"UNUSED_DAYS_LIMIT": {
					"oneOf": [
						{"type": "integer", "minimum": 0},
						{"type": "string", "pattern": "^[0-9]+$"}
					]
				}
			}
		},
		"unusedNotes": {"$ref": "#/definitions/records"}
	},
	"definitions": ` + recordsDefinition + `
}`

const recordsDefinition = `{
	"records": {
		"type": "object",
		"additionalProperties": {
			"type": "object",
			"properties": {
				"filename":     {"type": "string"},
				"ignored":      {"type": "boolean"},
				"lastAccessed": {"type": ["null", "string", "integer"]}
			}
		}
	}
}`

var (
	schema       = mustSchema(snapshotSchema)
	pluginFormat = mustSchema(pluginSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("store: invalid snapshot schema: %v", err))
	}
	return s
}

// wireSnapshot mirrors record.Snapshot with optional settings so absent
// values can take defaults.
type wireSnapshot struct {
	Settings struct {
		UnusedDaysLimit   *int `json:"unusedDaysLimit"`
		WeeklyReviewCount *int `json:"weeklyReviewCount"`
	} `json:"settings"`
	Records record.Store `json:"records"`
}

type pluginSnapshot struct {
	Settings struct {
		UnusedDaysLimit json.RawMessage `json:"UNUSED_DAYS_LIMIT"`
	} `json:"settings"`
	UnusedNotes record.Store `json:"unusedNotes"`
}

// DecodeSnapshot reads and validates a JSON snapshot, either the export
// format or the editor plugin's data file. Settings missing from the input
// take record.DefaultSettings. Any structural problem is reported as
// ErrCorrupt.
func DecodeSnapshot(r io.Reader) (*record.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if _, ok := keys["unusedNotes"]; ok {
		return decodePlugin(data)
	}

	if err := validate(schema, data); err != nil {
		return nil, err
	}
	var wire wireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	snap := record.NewSnapshot(record.DefaultSettings())
	if v := wire.Settings.UnusedDaysLimit; v != nil {
		snap.Settings.UnusedDaysLimit = *v
	}
	if v := wire.Settings.WeeklyReviewCount; v != nil {
		snap.Settings.WeeklyReviewCount = *v
	}
	if wire.Records != nil {
		snap.Records = wire.Records
	}
	return snap, nil
}

func decodePlugin(data []byte) (*record.Snapshot, error) {
	if err := validate(pluginFormat, data); err != nil {
		return nil, err
	}
	var wire pluginSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	snap := record.NewSnapshot(record.DefaultSettings())
	if raw := wire.Settings.UnusedDaysLimit; len(raw) > 0 {
		n, err := strconv.Atoi(strings.Trim(string(raw), `"`))
		if err != nil {
			return nil, fmt.Errorf("%w: UNUSED_DAYS_LIMIT: %v", ErrCorrupt, err)
		}
		snap.Settings.UnusedDaysLimit = n
	}
	if wire.UnusedNotes != nil {
		snap.Records = wire.UnusedNotes
	}
	return snap, nil
}

func validate(s *gojsonschema.Schema, data []byte) error {
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrCorrupt, strings.Join(msgs, "; "))
	}
	return nil
}

// EncodeSnapshot writes snap as indented JSON.
func EncodeSnapshot(w io.Writer, snap *record.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
