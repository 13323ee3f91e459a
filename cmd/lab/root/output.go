package root

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mtimit/gamify-product-lab/internal/engine"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

// writeStructured encodes v as JSON or YAML. It returns false for text so
// the caller renders its own view.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// printOutcome summarizes what an action earned.
func printOutcome(w io.Writer, out engine.Outcome) {
	xp := out.XPGained()
	if xp > 0 {
		fmt.Fprintln(w, ui.Good.Render(fmt.Sprintf("%s +%d XP", ui.IconSparkle, xp)))
	}
	if lvl, ok := out.LevelUp(); ok {
		fmt.Fprintf(w, "%s %s level %d\n", ui.IconBolt, ui.BadgeLevelUp, lvl)
	}
	for _, name := range out.Unlocked() {
		fmt.Fprintf(w, "%s Achievement unlocked: %s\n", ui.IconTrophy, ui.Gold.Render(name))
	}
	for _, title := range out.CompletedQuests() {
		fmt.Fprintf(w, "%s Quest completed: %s\n", ui.IconTarget, ui.Good.Render(title))
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
