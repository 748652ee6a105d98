package common

import "encoding/json"

// PrettyJson dumps v as indented json, for console inspection.
func PrettyJson(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	return string(b), err
}
