package finding

import (
	"fmt"
	"strings"
)

// Text renders the Finding's human-readable line(s). With
// displayStrings, Yara findings append one line per matched-string
// occurrence giving its offset and hex-escaped bytes.
func (f Finding) Text(displayStrings bool) string {
	file := f.foundInFile()

	switch f.Kind {
	case KindFilename:
		return fmt.Sprintf("[Filename] '%s' matches pattern /%s/\n", file, f.Pattern)
	case KindLevenshtein:
		return fmt.Sprintf("[Levenshtein] the name of '%s' is very similar to '%s'\n", file, f.Pattern)
	case KindHash:
		return fmt.Sprintf("[Hash] '%s' matches %s\n", file, f.HashString())
	case KindYara:
		var sb strings.Builder
		header := fmt.Sprintf("[Yara] '%s' matches rule '%s' (namespace '%s'", file, f.RuleName, f.Namespace)
		if len(f.Tags) > 0 {
			header += ", tags: " + strings.Join(f.Tags, ", ")
		}
		header += ")"
		if f.HasValueData {
			header += fmt.Sprintf(" [%s]", f.ValueData)
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		if displayStrings {
			for _, m := range f.Matches {
				for i, off := range m.Offsets {
					var data []byte
					if i < len(m.Data) {
						data = m.Data[i]
					}
					sb.WriteString(fmt.Sprintf("    %s @ 0x%x: %s\n", m.Identifier, off, hexEscapeBytes(data)))
				}
			}
		}
		return sb.String()
	default:
		return ""
	}
}
