package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	StateSchema = "foosball-state"
	// StateVersion is written by EncodeState. Version 0 is the bare camelCase
	// blob exported by the browser app.
	StateVersion = 1
)

var ErrUnsupportedSchemaVersion = errors.New("unsupported state schema version")

type envelope struct {
	Schema  string          `json:"schema"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// migration upgrades data from version N to N+1.
type migration func(data json.RawMessage) (json.RawMessage, error)

var migrations = map[int]migration{
	0: migrateLegacyBlob,
}

// EncodeState wraps v in a versioned envelope.
func EncodeState(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return json.Marshal(envelope{Schema: StateSchema, Version: StateVersion, Data: data})
}

// DecodeState unwraps raw into v, running every migration between the stored
// version and StateVersion. Input without an envelope is treated as version 0.
func DecodeState(raw []byte, v interface{}) error {
	version, data, err := unwrap(raw)
	if err != nil {
		return err
	}
	if version > StateVersion {
		return fmt.Errorf("%w: %d (newest known is %d)", ErrUnsupportedSchemaVersion, version, StateVersion)
	}

	for ; version < StateVersion; version++ {
		migrate, ok := migrations[version]
		if !ok {
			return fmt.Errorf("%w: no migration from version %d", ErrUnsupportedSchemaVersion, version)
		}
		if data, err = migrate(data); err != nil {
			return fmt.Errorf("failed to migrate state from version %d: %w", version, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return nil
}

func unwrap(raw []byte) (int, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, nil, fmt.Errorf("%w: empty blob", ErrStateCorrupt)
	}
	if trimmed[0] != '{' {
		return 0, trimmed, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	var schema string
	if rawSchema, ok := probe["schema"]; !ok || json.Unmarshal(rawSchema, &schema) != nil || schema != StateSchema {
		return 0, trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return env.Version, env.Data, nil
}

var legacyKeys = map[string]string{
	"teamAId":         "team_a_id",
	"teamBId":         "team_b_id",
	"scoreA":          "score_a",
	"scoreB":          "score_b",
	"scorB":           "score_b",
	"createdAt":       "created_at",
	"archivedAt":      "archived_at",
	"playerName":      "player_name",
	"predictedTeamId": "predicted_team_id",
	"teamId":          "team_id",
	"goalsFor":        "goals_for",
	"goalsAgainst":    "goals_against",
	"goalDifference":  "goal_difference",
}

// migrateLegacyBlob renames camelCase keys to the current wire names and
// gives tournaments saved before the playoff existed a group phase.
func migrateLegacyBlob(data json.RawMessage) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return json.Marshal(renameLegacyKeys(doc))
}

func renameLegacyKeys(node interface{}) interface{} {
	switch n := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(n))
		for key, value := range n {
			if renamed, ok := legacyKeys[key]; ok {
				key = renamed
			}
			out[key] = renameLegacyKeys(value)
		}
		if isTournament(out) {
			if _, ok := out["phase"]; !ok {
				out["phase"] = "group"
			}
		}
		return out
	case []interface{}:
		for i := range n {
			n[i] = renameLegacyKeys(n[i])
		}
		return n
	default:
		return node
	}
}

func isTournament(obj map[string]interface{}) bool {
	_, hasTeams := obj["teams"]
	_, hasMatches := obj["matches"]
	return hasTeams && hasMatches
}
