package hierarchy

import "encoding/json"

// Summary renders the extraction result as the textual context handed to the
// reasoning collaborator.
func (r *Result) Summary() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}
