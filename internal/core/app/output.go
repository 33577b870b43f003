package app

import (
	"bytes"
	"fmt"

	"reqcheck/internal/core/ports"
	"reqcheck/internal/shared/util"
	"reqcheck/internal/ui/report"
)

// WriteOutputs refreshes the artifact files configured under [output].
func (a *App) WriteOutputs(result ports.ScanResult) error {
	targets := []struct {
		path     string
		renderer report.Renderer
	}{
		{a.Config.Output.TSV, report.TSVRenderer{}},
		{a.Config.Output.Mermaid, report.MermaidRenderer{}},
		{a.Config.Output.DOT, report.DOTRenderer{}},
	}

	in := ReportInput(result)
	for _, target := range targets {
		if target.path == "" {
			continue
		}
		var buf bytes.Buffer
		if err := target.renderer.Render(&buf, in); err != nil {
			return fmt.Errorf("render %q: %w", target.path, err)
		}
		if err := util.WriteFileWithDirs(target.path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output %q: %w", target.path, err)
		}
	}
	return nil
}

func ReportInput(result ports.ScanResult) report.Input {
	return report.Input{
		Tree:       result.Tree,
		Dependents: result.Dependents,
		Result:     result.Check,
	}
}
