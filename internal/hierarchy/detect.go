package hierarchy

import "strconv"

// candidateLayouts are the container classes scanned for a modal shape, in
// fixed priority order. Only the first match per class is considered, and
// every match contributes extracted content regardless of the area verdict;
// overlapping matches are not de-duplicated.
var candidateLayouts = []string{
	"android.widget.FrameLayout",
	"android.app.Dialog",
	"android.widget.PopupWindow",
	"androidx.appcompat.app.AlertDialog",
}

// Details is the geometry of the detected popup.
type Details struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// Result is the outcome of one extraction pass over a hierarchy document.
type Result struct {
	IsPopup      bool               `json:"is_popup"`
	Content      []ContextItem      `json:"content"`
	Interactable map[string]Element `json:"interactable_elements"`
	Details      *Details           `json:"details,omitempty"`
}

// EmptyResult is the canonical no-popup result every failure path degrades
// to.
func EmptyResult() *Result {
	return &Result{
		Content:      []ContextItem{},
		Interactable: map[string]Element{},
	}
}

// ExtractPopupDetails decides whether the document shows a popup and
// extracts its context and interactable elements. Failures never propagate:
// a malformed document yields the canonical empty result, a candidate with
// malformed bounds is skipped without touching what earlier candidates
// recorded.
func ExtractPopupDetails(xmlContent string) *Result {
	root, err := Parse(xmlContent)
	if err != nil {
		return EmptyResult()
	}

	screenWidth := intAttr(root, "width")
	screenHeight := intAttr(root, "height")
	screenArea := screenWidth * screenHeight

	result := EmptyResult()
	c := newCollector(root, result)

	for _, layout := range candidateLayouts {
		candidate := findFirstDescendant(root, layout)
		if candidate == nil {
			continue
		}

		bounds, err := ParseBounds(candidate.Attr("bounds"))
		if err != nil {
			continue
		}

		ratio := 0.0
		if screenArea != 0 {
			ratio = float64(bounds.Area()) / float64(screenArea)
		}
		if ratio < 1 {
			result.IsPopup = true
			result.Details = &Details{
				Width:   bounds.Width(),
				Height:  bounds.Height(),
				CenterX: bounds.CenterX(),
				CenterY: bounds.CenterY(),
			}
		}

		// Extraction runs for every matched candidate, popup or not.
		c.extractText(candidate)
		c.extractActions(candidate)
		c.extractImages(candidate)
	}

	return result
}

func intAttr(n *Node, name string) int {
	v, err := strconv.Atoi(n.Attr(name))
	if err != nil {
		return 0
	}
	return v
}
