package session

import "Civica/internal/calc/standards"

// Snapshot is a serializable copy of a session handed to the save/favorite
// store and the report renderer.
type Snapshot struct {
	CalculatorID   string           `json:"calculator_id"`
	CalculatorName string           `json:"calculator_name"`
	IconKey        string           `json:"icon_key"`
	Category       string           `json:"category"`
	Family         standards.Family `json:"family"`
	StandardTitle  string           `json:"standard_title"`
	StandardClause string           `json:"standard_clause,omitempty"`
	State          State            `json:"state"`
	Input          Inputs           `json:"input"`
	Output         *Result          `json:"output"`
	Warnings       []string         `json:"warnings,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		CalculatorID:   s.calc.ID,
		CalculatorName: s.calc.Name,
		IconKey:        s.calc.Icon,
		Category:       s.calc.Category,
		Family:         s.calc.Family,
		StandardTitle:  s.std.Metadata.Title,
		StandardClause: s.std.Metadata.Clause,
		State:          s.State(),
		Input:          s.in.clone(),
		Warnings:       s.Warnings(),
	}
	if s.result != nil {
		out := *s.result
		snap.Output = &out
	}
	return snap
}
