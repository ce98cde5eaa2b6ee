package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

var (
	stringFields = map[string]bool{
		"id": true, "name": true, "description": true, "type": true, "endpoint": true,
		"instructions": true, "status": true, "pricingModel": true,
		"governanceStatus": true, "visibility": true,
	}
	listFields = map[string]bool{
		"compatible": true, "tags": true, "dependencies": true, "comments": true,
	}
)

// decodeLenient decodes the known fields of raw one at a time. A field whose
// value does not fit the model is coerced when the intent is plain ("tags":
// "rag", "invocations": 12.0, "verified": "yes"); anything else is returned
// in rejected so it can be carried verbatim.
func decodeLenient(raw map[string]json.RawMessage) (itemAlias, map[string]json.RawMessage, error) {
	accepted := make(map[string]json.RawMessage, len(raw))
	rejected := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownFields[k] {
			continue
		}
		var trial itemAlias
		if json.Unmarshal(fieldDoc(k, v), &trial) == nil {
			accepted[k] = v
			continue
		}
		if coerced, ok := coerceField(k, v); ok {
			accepted[k] = coerced
			continue
		}
		rejected[k] = v
	}

	var alias itemAlias
	data, err := json.Marshal(accepted)
	if err != nil {
		return alias, nil, err
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return alias, nil, err
	}
	return alias, rejected, nil
}

func fieldDoc(k string, v json.RawMessage) []byte {
	doc, _ := json.Marshal(map[string]json.RawMessage{k: v})
	return doc
}

func coerceField(k string, v json.RawMessage) (json.RawMessage, bool) {
	var val any
	if err := json.Unmarshal(v, &val); err != nil {
		return nil, false
	}
	var out any
	switch {
	case stringFields[k]:
		s, ok := looseString(val)
		if !ok {
			return nil, false
		}
		out = s
	case listFields[k]:
		list, ok := looseList(val)
		if !ok {
			return nil, false
		}
		out = list
	case k == "verified":
		b, ok := looseBool(val)
		if !ok {
			return nil, false
		}
		out = b
	case k == "usageStats":
		m, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		var u UsageStats
		u.Invocations, _ = looseInt(m["invocations"])
		u.Success, _ = looseInt(m["success"])
		u.Error, _ = looseInt(m["error"])
		out = u
	default:
		return nil, false
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, false
	}
	return data, true
}

func looseString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// looseList accepts a comma separated string or an array of scalars.
func looseList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		var out []string
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := looseString(e); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

func looseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "on":
			return true, true
		case "no", "n", "off", "":
			return false, true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}

// looseInt truncates fractional counts; unparseable values count as zero.
func looseInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case nil:
		return 0, true
	}
	return 0, false
}
