package api

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// The backend does not agree with itself on response envelopes. A list may
// come back bare, under "data", under a named key, or under a named key inside
// "data". DecodeList and DecodeObject are the only places that know this; every
// endpoint names its keys once and gets a plain value back.

const maxEnvelopeDepth = 3

var nullJSON = []byte("null")

// DecodeList decodes the list found in raw into out (a pointer to a slice).
func DecodeList(raw []byte, out interface{}, keys ...string) error {
	list, err := extractList(bytes.TrimSpace(raw), keys, 0)
	if err != nil {
		return err
	}
	list, err = normalizeIDs(list)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(list, out); err != nil {
		return errors.Wrapf(ErrMalformed, "decode list: %v", err)
	}
	return nil
}

// DecodeObject decodes the single object found in raw into out.
func DecodeObject(raw []byte, out interface{}, keys ...string) error {
	obj, err := extractObject(bytes.TrimSpace(raw), keys, 0)
	if err != nil {
		return err
	}
	obj, err = normalizeID(obj)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(obj, out); err != nil {
		return errors.Wrapf(ErrMalformed, "decode object: %v", err)
	}
	return nil
}

func extractList(raw json.RawMessage, keys []string, depth int) (json.RawMessage, error) {
	if len(raw) == 0 || bytes.Equal(raw, nullJSON) {
		return json.RawMessage("[]"), nil
	}
	switch raw[0] {
	case '[':
		return raw, nil
	case '{':
	default:
		return nil, errors.Wrapf(ErrMalformed, "expected list, got %.20s", raw)
	}
	if depth >= maxEnvelopeDepth {
		return nil, errors.Wrap(ErrMalformed, "list envelope too deep")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode envelope: %v", err)
	}
	for _, key := range candidates(keys) {
		val, ok := fields[key]
		if !ok {
			continue
		}
		val = bytes.TrimSpace(val)
		if len(val) == 0 || bytes.Equal(val, nullJSON) {
			return json.RawMessage("[]"), nil
		}
		switch val[0] {
		case '[':
			return val, nil
		case '{':
			if list, err := extractList(val, keys, depth+1); err == nil {
				return list, nil
			}
		}
	}
	return nil, errors.Wrapf(ErrMalformed, "no list under %v", candidates(keys))
}

func extractObject(raw json.RawMessage, keys []string, depth int) (json.RawMessage, error) {
	if len(raw) == 0 || bytes.Equal(raw, nullJSON) {
		return nil, errors.Wrap(ErrMalformed, "empty object")
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
			return nil, errors.Wrap(ErrMalformed, "expected object, got empty list")
		}
		return extractObject(bytes.TrimSpace(items[0]), keys, depth+1)
	case '{':
	default:
		return nil, errors.Wrapf(ErrMalformed, "expected object, got %.20s", raw)
	}
	if depth >= maxEnvelopeDepth {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode envelope: %v", err)
	}
	for _, key := range candidates(keys) {
		val, ok := fields[key]
		if !ok {
			continue
		}
		val = bytes.TrimSpace(val)
		if len(val) > 0 && (val[0] == '{' || val[0] == '[') {
			return extractObject(val, keys, depth+1)
		}
	}
	return raw, nil
}

func candidates(keys []string) []string {
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, "data")
}

func normalizeIDs(list json.RawMessage) (json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode list: %v", err)
	}
	for i, item := range items {
		norm, err := normalizeID(bytes.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		items[i] = norm
	}
	out, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "encode list: %v", err)
	}
	return out, nil
}

// normalizeID copies a mongo style "_id" into "id".
func normalizeID(obj json.RawMessage) (json.RawMessage, error) {
	if len(obj) == 0 || obj[0] != '{' || !bytes.Contains(obj, []byte(`"_id"`)) {
		return obj, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode object: %v", err)
	}
	if _, ok := fields["id"]; ok {
		return obj, nil
	}
	fields["id"] = fields["_id"]
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "encode object: %v", err)
	}
	return out, nil
}

// failureEnvelope reports bodies like {"success": false, "message": "..."}
// that some endpoints send with a 200 status.
func failureEnvelope(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return false
	}
	var env struct {
		Success *bool  `json:"success"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return (env.Success != nil && !*env.Success) || env.Status == "error"
}
