package graph

import (
	"fmt"
	"strings"
)

// RenderMermaid renders a page as a Mermaid flowchart. Nodes are labeled with
// their names, falling back to keys; the center is drawn as a circle.
func RenderMermaid(page *Page) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	for _, n := range page.Nodes {
		label := n.Name
		if label == "" {
			label = n.Key
		}
		lb, rb := "[", "]"
		if n.Distance == 0 {
			lb, rb = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(n.Key), lb, escapeMermaid(label), rb))
	}
	for _, l := range page.Links {
		sb.WriteString(fmt.Sprintf("    %s -->|%s| %s\n",
			mermaidID(l.Source), escapeMermaid(l.Role), mermaidID(l.Target)))
	}

	return sb.String()
}

func mermaidID(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

func escapeMermaid(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "|", "#124;").Replace(s)
}
