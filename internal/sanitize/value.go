package sanitize

import "slices"

// Options controls Value and Map.
type Options struct {
	// RichFields names map keys whose string values may keep the RichText tag subset.
	RichFields []string
}

func (o Options) rich(key string) bool {
	return key != "" && slices.Contains(o.RichFields, key)
}

// Value sanitizes every string leaf of a plain data structure. Maps and
// slices are copied and walked; numbers, booleans, nil and any other value
// (time.Time, domain.Timestamp, json.Number) pass through untouched.
func Value(v any, opts Options) any {
	return walk("", v, opts)
}

// Map is Value for the common map case. A nil map stays nil.
func Map(m map[string]any, opts Options) map[string]any {
	if m == nil {
		return nil
	}
	return walk("", m, opts).(map[string]any)
}

func walk(key string, v any, opts Options) any {
	switch x := v.(type) {
	case string:
		if opts.rich(key) {
			return RichText(x)
		}
		return Text(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[Text(k)] = walk(k, val, opts)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = walk(key, val, opts)
		}
		return out
	case []string:
		out := make([]string, len(x))
		for i, val := range x {
			out[i] = walk(key, val, opts).(string)
		}
		return out
	default:
		return v
	}
}
