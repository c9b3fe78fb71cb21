package hierarchy

import (
	"strconv"
	"strings"
)

// ContextItem is a non-interactive piece of screen content surfaced as
// supporting information: either text or an image with some identity.
type ContextItem struct {
	XPath       string `json:"xpath"`
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ResourceID  string `json:"resource_id,omitempty"`
	ContentDesc string `json:"content_desc,omitempty"`
	Bounds      string `json:"bounds,omitempty"`
}

// Element is one interactive node with its per-pass identifier and full
// metadata snapshot.
type Element struct {
	ID            string `json:"_id"`
	Text          string `json:"text"`
	ResourceID    string `json:"resource_id"`
	Type          string `json:"type"`
	Bounds        string `json:"bounds"`
	ContentDesc   string `json:"content_desc"`
	Enabled       bool   `json:"enabled"`
	Focused       bool   `json:"focused"`
	Scrollable    bool   `json:"scrollable"`
	LongClickable bool   `json:"long_clickable"`
	Password      bool   `json:"password"`
	Selected      bool   `json:"selected"`
	XPath         string `json:"xpath"`
}

// imageTags are the widget classes treated as image-bearing.
var imageTags = []string{
	"android.widget.ImageView",
	"android.widget.ImageButton",
	"android.widget.Image",
}

// collector accumulates extraction output across all candidate layouts of a
// single ExtractPopupDetails call. The identifier counter lives here: 1-based,
// strictly increasing, never reset mid-pass, never shared across calls.
type collector struct {
	root    *Node
	result  *Result
	counter int
}

func newCollector(root *Node, result *Result) *collector {
	return &collector{root: root, result: result, counter: 1}
}

// extractText records every non-clickable descendant carrying text.
// Clickable text nodes are left for extractActions so the same node is not
// surfaced under two categories.
func (c *collector) extractText(layout *Node) {
	walkDescendants(layout, func(n *Node) {
		text := n.Attr("text")
		if text == "" || n.clickable() {
			return
		}
		c.result.Content = append(c.result.Content, ContextItem{
			XPath: NodePath(c.root, n),
			Type:  "text",
			Text:  text,
		})
	})
}

// extractActions assigns the next identifier to every clickable descendant
// in document order and snapshots its metadata.
func (c *collector) extractActions(layout *Node) {
	walkDescendants(layout, func(n *Node) {
		if !n.clickable() {
			return
		}
		id := strconv.Itoa(c.counter)
		c.result.Interactable[id] = Element{
			ID:            id,
			Text:          n.Attr("text"),
			ResourceID:    n.Attr("resource-id"),
			Type:          simplifiedType(n.Tag),
			Bounds:        n.Attr("bounds"),
			ContentDesc:   n.Attr("content-desc"),
			Enabled:       n.flag("enabled", "true"),
			Focused:       n.flag("focused", "false"),
			Scrollable:    n.flag("scrollable", "false"),
			LongClickable: n.flag("long-clickable", "false"),
			Password:      n.flag("password", "false"),
			Selected:      n.flag("selected", "false"),
			XPath:         NodePath(c.root, n),
		}
		c.counter++
	})
}

// extractImages records non-clickable image descendants that carry at least
// one of resource-id / content-desc. An image with only a drawable reference
// is decorative and dropped.
func (c *collector) extractImages(layout *Node) {
	for _, tag := range imageTags {
		walkDescendants(layout, func(n *Node) {
			if n.Tag != tag || n.clickable() {
				return
			}
			resourceID := n.Attr("resource-id")
			contentDesc := n.Attr("content-desc")
			if resourceID == "" && contentDesc == "" {
				return
			}
			c.result.Content = append(c.result.Content, ContextItem{
				XPath:       NodePath(c.root, n),
				Type:        "image",
				ResourceID:  resourceID,
				ContentDesc: contentDesc,
				Bounds:      n.Attr("bounds"),
			})
		})
	}
}

// simplifiedType reduces a widget class to its last path component,
// e.g. android.widget.Button -> Button.
func simplifiedType(tag string) string {
	if i := strings.LastIndex(tag, "."); i >= 0 {
		return tag[i+1:]
	}
	return tag
}
