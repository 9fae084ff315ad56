package utils

import "fmt"

// ToStringSlice flattens a decoded JSON value into its string messages.
// DRF error bodies carry either a bare string or a list of strings per field.
func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		stringSlice := make([]string, 0, len(t))
		for _, item := range t {
			stringSlice = append(stringSlice, ToStringSlice(item)...)
		}
		return stringSlice
	case map[string]any:
		stringSlice := make([]string, 0, len(t))
		for k, item := range t {
			for _, msg := range ToStringSlice(item) {
				stringSlice = append(stringSlice, k+": "+msg)
			}
		}
		return stringSlice
	default:
		return []string{fmt.Sprint(t)}
	}
}
