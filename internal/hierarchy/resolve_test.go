package hierarchy

import (
	"encoding/json"
	"testing"
)

func boolLike(v bool) *BoolLike {
	b := BoolLike(v)
	return &b
}

func sampleElements() map[string]any {
	return map[string]any{
		"1": Element{ID: "1", Text: "Accept", Type: "Button"},
		"2": Element{ID: "2", Text: "Not now", Type: "Button"},
	}
}

func TestResolveShortCircuitsWithoutPopup(t *testing.T) {
	rec := &Recommendation{
		PopupDetection:  boolLike(true),
		SuggestedAction: "tap something",
		PrimaryMethod:   Method{ID: "1", SelectionReason: "closest"},
	}

	resp := Resolve(false, rec, sampleElements())
	if resp.Status != "success" {
		t.Errorf("expected success, got %q", resp.Status)
	}
	if resp.AgentResponse == nil || resp.AgentResponse.PopupDetection {
		t.Fatal("expected popup_detection false")
	}
	if resp.AgentResponse.PrimaryMethod != nil || resp.AgentResponse.SuggestedAction != "" {
		t.Error("geometry-negative resolution must not consult the recommendation")
	}
}

func TestResolvePrimaryHit(t *testing.T) {
	rec := &Recommendation{
		SuggestedAction: "tap Not now",
		PrimaryMethod:   Method{ID: "2", SelectionReason: "explicit dismissal"},
	}

	resp := Resolve(true, rec, sampleElements())
	if resp.Status != "success" {
		t.Fatalf("expected success, got %q", resp.Status)
	}
	agent := resp.AgentResponse
	if !agent.PopupDetection {
		t.Error("popup_detection defaults to true when the field is absent")
	}
	if agent.PrimaryMethod.SelectionReason != "explicit dismissal" {
		t.Errorf("selection reason lost: %+v", agent.PrimaryMethod)
	}
	element, ok := agent.PrimaryMethod.ElementMetadata.(Element)
	if !ok || element.Text != "Not now" {
		t.Errorf("expected full element metadata, got %+v", agent.PrimaryMethod.ElementMetadata)
	}
}

func TestResolvePrimaryMiss(t *testing.T) {
	rec := &Recommendation{PrimaryMethod: Method{ID: "99", SelectionReason: "stale"}}

	resp := Resolve(true, rec, sampleElements())
	if resp.Status != "success" {
		t.Fatalf("a hallucinated id must degrade, not fail: %q", resp.Status)
	}
	metadata, ok := resp.AgentResponse.PrimaryMethod.ElementMetadata.(map[string]any)
	if !ok || len(metadata) != 0 {
		t.Errorf("expected empty metadata object, got %+v", resp.AgentResponse.PrimaryMethod.ElementMetadata)
	}
}

func TestResolveAlternates(t *testing.T) {
	rec := &Recommendation{
		PrimaryMethod: Method{ID: "1"},
		AlternateMethods: []Method{
			{ID: "2", DismissalReason: "less direct"},
			{ID: "3", DismissalReason: "too small"},
		},
	}

	resp := Resolve(true, rec, sampleElements())
	alts := resp.AgentResponse.AlternativeMethods
	if len(alts) != 2 {
		t.Fatalf("expected 2 alternates in input order, got %d", len(alts))
	}

	if alts[0].ID != "" || alts[0].ElementMetadata == nil {
		t.Errorf("resolved alternate must carry metadata, got %+v", alts[0])
	}
	if alts[0].DismissalReason != "less direct" {
		t.Errorf("dismissal reason lost: %+v", alts[0])
	}

	// Unresolvable alternate passes through untranslated.
	if alts[1].ID != "3" || alts[1].DismissalReason != "too small" || alts[1].ElementMetadata != nil {
		t.Errorf("expected untranslated pass-through, got %+v", alts[1])
	}
}

func TestResolveNilRecommendation(t *testing.T) {
	resp := Resolve(true, nil, sampleElements())
	if resp.Status != "failed" {
		t.Fatalf("expected failed status, got %q", resp.Status)
	}
	agent := resp.AgentResponse
	if agent == nil || !agent.PopupDetection || agent.PrimaryMethod == nil || agent.AlternativeMethods == nil {
		t.Errorf("expected placeholder agent response, got %+v", agent)
	}
}

func TestRecommendationDetected(t *testing.T) {
	tests := []struct {
		name string
		rec  *Recommendation
		want bool
	}{
		{"nil recommendation", nil, true},
		{"field absent", &Recommendation{}, true},
		{"explicit true", &Recommendation{PopupDetection: boolLike(true)}, true},
		{"explicit false", &Recommendation{PopupDetection: boolLike(false)}, false},
	}
	for _, tt := range tests {
		if got := tt.rec.Detected(); got != tt.want {
			t.Errorf("%s: Detected() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBoolLikeUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`"True"`, true},
		{`"False"`, false},
		{`"true"`, true},
		{`1`, false},
		{`null`, false},
	}
	for _, tt := range tests {
		var b BoolLike
		if err := json.Unmarshal([]byte(tt.input), &b); err != nil {
			t.Errorf("unmarshal %s: %v", tt.input, err)
			continue
		}
		if bool(b) != tt.want {
			t.Errorf("unmarshal %s = %v, want %v", tt.input, bool(b), tt.want)
		}
	}
}

func TestRecommendationUnmarshal(t *testing.T) {
	payload := `{
	  "popup_detection": "True",
	  "suggested_action": "tap Not now",
	  "primary_method": {"_id": "2", "selection_reason": "dismisses without consent"},
	  "alternate_methods": [{"_id": "1", "dismissal_reason": "accepts the offer"}]
	}`

	var rec Recommendation
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.Detected() {
		t.Error("expected detection true")
	}
	if rec.PrimaryMethod.ID != "2" {
		t.Errorf("primary id = %q", rec.PrimaryMethod.ID)
	}
	if len(rec.AlternateMethods) != 1 || rec.AlternateMethods[0].DismissalReason != "accepts the offer" {
		t.Errorf("alternates = %+v", rec.AlternateMethods)
	}
}
