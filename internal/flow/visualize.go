package flow

import (
	"fmt"
	"strings"
)

// Mermaid renders the graph as a mermaid flowchart, one edge per rule plus
// the default edge. Debug tooling only; not part of the runtime contract.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, route := range g.Routes {
		from := nodeID(route.From.Kind, route.From.Name)
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", from, route.From.Name))

		for _, rule := range route.Rules {
			for _, ref := range rule.Then {
				b.WriteString(fmt.Sprintf("    %s -->|%s| %s[\"%s\"]\n",
					from, rule.Name, nodeID(ref.Kind, ref.Name), nodeLabel(ref.Kind, ref.Name)))
			}
		}
		for _, ref := range route.DefaultThen {
			b.WriteString(fmt.Sprintf("    %s -->|default| %s[\"%s\"]\n",
				from, nodeID(ref.Kind, ref.Name), nodeLabel(ref.Kind, ref.Name)))
		}
	}
	return b.String()
}

// ExportHTML wraps the mermaid source in a minimal self-contained page.
func (g *Graph) ExportHTML() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>campaign graph</title></head>
<body>
<pre class="mermaid">
%s</pre>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</body>
</html>
`, g.Mermaid())
}

func nodeID(kind, name string) string {
	if name == "" {
		return kind
	}
	r := strings.NewReplacer(".", "_", "-", "_")
	return kind + "_" + r.Replace(name)
}

func nodeLabel(kind, name string) string {
	if name == "" {
		return kind
	}
	return kind + ": " + name
}
