package hierarchy

import (
	"fmt"
	"strings"
)

// NodePath computes the absolute structural path of target within the tree
// rooted at root, e.g. /hierarchy/android.widget.FrameLayout[1]/android.widget.Button[2].
// The root segment carries no index; every other segment carries its 1-based
// ordinal among same-tag siblings. An unreachable target yields "" (path
// unknown, not root).
func NodePath(root, target *Node) string {
	chain := chainToTarget(root, target)
	if chain == nil {
		return ""
	}

	var b strings.Builder
	for i, n := range chain {
		if i == 0 {
			b.WriteString("/")
			b.WriteString(n.Tag)
			continue
		}
		parent := chain[i-1]
		index := 0
		for _, sibling := range parent.Children {
			if sibling.Tag == n.Tag {
				index++
				if sibling == n {
					break
				}
			}
		}
		fmt.Fprintf(&b, "/%s[%d]", n.Tag, index)
	}
	return b.String()
}

// chainToTarget collects the root-to-target ancestor chain via depth-first
// search, first match wins.
func chainToTarget(current, target *Node) []*Node {
	if current == target {
		return []*Node{current}
	}
	for _, child := range current.Children {
		if sub := chainToTarget(child, target); sub != nil {
			return append([]*Node{current}, sub...)
		}
	}
	return nil
}
