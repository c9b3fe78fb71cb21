package hierarchy

import (
	"encoding/json"
	"strings"
)

// BoolLike accepts the loose boolean encodings the reasoning model emits:
// JSON booleans or the strings "true"/"True"/"false"/"False".
type BoolLike bool

func (b *BoolLike) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = BoolLike(t)
	case string:
		*b = BoolLike(strings.EqualFold(t, "true"))
	default:
		*b = false
	}
	return nil
}

// Method references one element by its per-pass identifier.
type Method struct {
	ID              string `json:"_id"`
	SelectionReason string `json:"selection_reason,omitempty"`
	DismissalReason string `json:"dismissal_reason,omitempty"`
}

// Recommendation is the untrusted structure returned by the reasoning
// collaborator. Every field is optional.
type Recommendation struct {
	PopupDetection   *BoolLike `json:"popup_detection"`
	SuggestedAction  string    `json:"suggested_action"`
	PrimaryMethod    Method    `json:"primary_method"`
	AlternateMethods []Method  `json:"alternate_methods"`
}

// Detected reports the collaborator's popup opinion, defaulting to true when
// the field (or the whole recommendation) is absent.
func (r *Recommendation) Detected() bool {
	if r == nil || r.PopupDetection == nil {
		return true
	}
	return bool(*r.PopupDetection)
}

// PrimaryMethod is the resolved primary recommendation. ElementMetadata is
// the full element snapshot on a hit and an empty object when the referenced
// identifier did not resolve.
type PrimaryMethod struct {
	SelectionReason string `json:"selection_reason,omitempty"`
	ElementMetadata any    `json:"element_metadata,omitempty"`
}

// AlternativeMethod is one resolved alternate. On a lookup miss the original
// identifier is passed through untranslated so the caller still sees it.
type AlternativeMethod struct {
	ID              string `json:"_id,omitempty"`
	ElementMetadata any    `json:"element_metadata,omitempty"`
	DismissalReason string `json:"dismissal_reason"`
}

// AgentResponse is the element-resolved recommendation.
type AgentResponse struct {
	PopupDetection     bool                `json:"popup_detection"`
	SuggestedAction    string              `json:"suggested_action,omitempty"`
	PrimaryMethod      *PrimaryMethod      `json:"primary_method,omitempty"`
	AlternativeMethods []AlternativeMethod `json:"alternative_methods,omitempty"`
}

// Response is the envelope handed back to the testing agent. It is always
// well-formed, possibly degraded, never an error surface.
type Response struct {
	Status        string         `json:"status"`
	Message       string         `json:"message,omitempty"`
	AgentResponse *AgentResponse `json:"agent_response"`
}

// Resolve reconciles a recommendation against the element metadata extracted
// for the same document.
//
// popupDetected false short-circuits: geometry is authoritative over the
// collaborator's free-text opinion, so the recommendation is not consulted
// at all. A nil recommendation while a popup was detected is a structurally
// failed exchange and degrades to the failed placeholder response.
func Resolve(popupDetected bool, rec *Recommendation, elements map[string]any) *Response {
	if !popupDetected {
		return &Response{
			Status:        "success",
			Message:       "success",
			AgentResponse: &AgentResponse{PopupDetection: false},
		}
	}
	if rec == nil {
		return FailedResponse("no recommendation to resolve")
	}

	primary := &PrimaryMethod{SelectionReason: rec.PrimaryMethod.SelectionReason}
	if metadata, ok := elements[rec.PrimaryMethod.ID]; ok {
		primary.ElementMetadata = metadata
	} else {
		primary.ElementMetadata = map[string]any{}
	}

	alternatives := make([]AlternativeMethod, 0, len(rec.AlternateMethods))
	for _, method := range rec.AlternateMethods {
		if metadata, ok := elements[method.ID]; ok {
			alternatives = append(alternatives, AlternativeMethod{
				ElementMetadata: metadata,
				DismissalReason: method.DismissalReason,
			})
		} else {
			alternatives = append(alternatives, AlternativeMethod{
				ID:              method.ID,
				DismissalReason: method.DismissalReason,
			})
		}
	}

	return &Response{
		Status:  "success",
		Message: "success",
		AgentResponse: &AgentResponse{
			PopupDetection:     rec.Detected(),
			SuggestedAction:    rec.SuggestedAction,
			PrimaryMethod:      primary,
			AlternativeMethods: alternatives,
		},
	}
}

// FailedResponse is the placeholder envelope for a resolution that could not
// be mapped.
func FailedResponse(message string) *Response {
	return &Response{
		Status:  "failed",
		Message: message,
		AgentResponse: &AgentResponse{
			PopupDetection:     true,
			PrimaryMethod:      &PrimaryMethod{},
			AlternativeMethods: []AlternativeMethod{},
		},
	}
}

// MetadataIndex exposes the extracted elements as the generic id-to-metadata
// map Resolve consumes.
func (r *Result) MetadataIndex() map[string]any {
	index := make(map[string]any, len(r.Interactable))
	for id, element := range r.Interactable {
		index[id] = element
	}
	return index
}
