package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/matcher"
	"github.com/aretw0/sentinel/pkg/profile"
)

// Overlay marks the path a sample input takes through the chat rules.
type Overlay struct {
	Probe string
}

// GenerateMermaid produces a Mermaid flowchart of the chat rules in priority order.
// Each rule is a decision node; a failed test falls through to the next rule and finally
// to the fallback. With an overlay, the nodes a probe visits are styled.
func GenerateMermaid(p profile.Profile, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    input((\"input\"))\n")

	rules := p.Rules.Rules()
	prev := "input"
	for i, r := range rules {
		id := fmt.Sprintf("rule_%d", i)
		sb.WriteString(fmt.Sprintf("    %s{\"%s\"}\n", id, label(strings.Join(r.Keywords, " | "))))
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id+"_reply", label(r.Response)))
		if prev == "input" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -- \"no\" --> %s\n", prev, id))
		}
		sb.WriteString(fmt.Sprintf("    %s -- \"contains\" --> %s\n", id, id+"_reply"))
		prev = id
	}

	sb.WriteString(fmt.Sprintf("    fallback[/\"%s\"/]\n", label(p.Fallback)))
	if prev == "input" {
		sb.WriteString("    input --> fallback\n")
	} else {
		sb.WriteString(fmt.Sprintf("    %s -- \"no\" --> fallback\n", prev))
	}

	if overlay != nil {
		_, hit, _ := matcher.Find(overlay.Probe, p.Rules)

		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    class input visited;\n")

		last := len(rules) - 1
		if hit >= 0 {
			last = hit
		}
		for i := 0; i <= last; i++ {
			sb.WriteString(fmt.Sprintf("    class rule_%d visited;\n", i))
		}
		if hit >= 0 {
			sb.WriteString(fmt.Sprintf("    class rule_%d_reply current;\n", hit))
		} else {
			sb.WriteString("    class fallback current;\n")
		}
	}

	return sb.String()
}

// GenerateCommandsMermaid produces a Mermaid flowchart of the terminal command table.
func GenerateCommandsMermaid(table domain.CommandTable) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    line((\"line\"))\n")

	for _, c := range table.Commands() {
		id := "cmd_" + sanitizeMermaidID(c.Token)
		switch c.Effect {
		case domain.EffectClear:
			sb.WriteString(fmt.Sprintf("    %s[[\"clear history\"]]\n", id))
		case domain.EffectEcho:
			sb.WriteString(fmt.Sprintf("    %s[/\"echo rest of line\"/]\n", id))
		default:
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label(c.Reply)))
		}
		sb.WriteString(fmt.Sprintf("    line -- \"%s\" --> %s\n", label(c.Token), id))
	}
	sb.WriteString(fmt.Sprintf("    not_found[\"%s\"]\n", label(fmt.Sprintf(domain.NotFoundFormat, "&lt;cmd&gt;"))))
	sb.WriteString("    line -. \"other\" .-> not_found\n")
	return sb.String()
}

// label escapes text for a quoted Mermaid label.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", "<br/>")
	return s
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
