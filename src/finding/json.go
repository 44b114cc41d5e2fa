package finding

import "encoding/json"

// jsonObject builds the numbered-key map described in §6: encoding/json
// sorts map[string]interface{} keys lexicographically when marshaling,
// so zero-padded numeric prefixes ("01_...", "02_...") are enough to
// pin the printable field order without a hand-rolled ordered-map type.
func (f Finding) jsonObject(displayStrings bool) map[string]interface{} {
	obj := map[string]interface{}{
		"01_scanner":          f.Kind.String(),
		"02_suspicious_file":  f.FilePath,
	}

	switch f.Kind {
	case KindFilename:
		obj["03_pattern"] = f.Pattern
	case KindLevenshtein:
		obj["03_wellknown_name"] = f.Pattern
	case KindHash:
		obj["03_hash_type"] = f.HashKind.String()
		obj["04_hash_value"] = hexString(f.HashDigest)
	case KindYara:
		obj["03_rule_name"] = f.RuleName
		obj["04_namespace"] = f.Namespace
		obj["05_tags"] = f.Tags
		if displayStrings {
			obj["06_matches"] = matchesToJSON(f.Matches)
		}
		if f.HasValueData {
			obj["07_value_data"] = f.ValueData
		}
		if f.ContainedFile != "" {
			obj["08_contained_file"] = f.ContainedFile
		}
	}

	return obj
}

func matchesToJSON(matches []StringMatch) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		points := make([]map[string]interface{}, 0, len(m.Offsets))
		for i, off := range m.Offsets {
			var data []byte
			if i < len(m.Data) {
				data = m.Data[i]
			}
			points = append(points, map[string]interface{}{
				"offset": off,
				"data":   hexEscapeBytes(data),
			})
		}
		out = append(out, map[string]interface{}{
			"identifier": m.Identifier,
			"matches":    points,
		})
	}
	return out
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

// JSONLine renders the Finding as a single line-delimited JSON object,
// without a trailing newline.
func (f Finding) JSONLine(displayStrings bool) ([]byte, error) {
	return json.Marshal(f.jsonObject(displayStrings))
}
