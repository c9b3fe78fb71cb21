// Package elements normalizes actionable-element lists supplied by the
// calling test runner into the id-keyed metadata map used for annotation and
// recommendation resolution.
package elements

import (
	"fmt"
	"strings"
)

// Raw is one element as sent by the test runner. Every field is untrusted
// and optional; elementId may arrive as a string or a number.
type Raw struct {
	ElementID   any         `json:"elementId"`
	Text        string      `json:"text"`
	ContentDesc string      `json:"contentdesc"`
	ResourceID  string      `json:"resourceid"`
	XPath       string      `json:"xpath"`
	CustomXPath string      `json:"customxpath"`
	Attributes  []Attribute `json:"attributes"`
}

// Attribute is a free-form name/value pair forwarded by the runner.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Processed is the normalized element record.
type Processed struct {
	NodeID         string            `json:"node_id"`
	Description    string            `json:"description"`
	HeuristicScore int               `json:"heuristic_score"`
	Attributes     map[string]string `json:"attributes"`
}

// Bounds returns the element's bounds attribute, "" when the runner did not
// send one.
func (p Processed) Bounds() string {
	return p.Attributes["bounds"]
}

// Process flattens raw elements into a map keyed by the stringified element
// id. The description prefers visible text plus content description and
// falls back to the resource id.
func Process(raw []Raw) map[string]Processed {
	processed := make(map[string]Processed, len(raw))
	for _, element := range raw {
		description := strings.TrimSpace(element.Text + " " + element.ContentDesc)
		if description == "" {
			description = strings.TrimSpace(element.ResourceID)
		}

		attributes := map[string]string{
			"xpath":        element.XPath,
			"customxpath":  element.CustomXPath,
			"content_desc": element.ContentDesc,
			"resource_id":  element.ResourceID,
		}
		for _, attr := range element.Attributes {
			if attr.Name != "" {
				attributes[attr.Name] = attr.Value
			}
		}

		id := normalizeID(element.ElementID)
		processed[id] = Processed{
			NodeID:      id,
			Description: description,
			Attributes:  attributes,
		}
	}
	return processed
}

// normalizeID renders whatever the runner sent as the map key. JSON numbers
// decode as float64; integral values must not pick up a decimal point.
func normalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
