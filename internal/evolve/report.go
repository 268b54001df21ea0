package evolve

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// BestReport is the JSON shape WriteBest emits for the winning
// candidate. Mode fields carry names, not codes, so reports stay
// readable without the enum tables.
type BestReport struct {
	Score    float64 `json:"score"`
	Target   string  `json:"target"`
	Strategy string  `json:"strategy"`

	Engine          string `json:"engine_mode"`
	Psi             string `json:"psi_mode"`
	Koppa           string `json:"koppa_mode"`
	TriplePsi       bool   `json:"triple_psi"`
	MultiLevelKoppa bool   `json:"multi_level_koppa"`
	Ticks           uint64 `json:"ticks"`

	FinalRatio         string  `json:"final_ratio,omitempty"`
	FinalRatioSnapshot float64 `json:"final_ratio_snapshot"`
	PsiEvents          uint64  `json:"psi_events"`
	RhoEvents          uint64  `json:"rho_events"`
	MuZeroEvents       uint64  `json:"mu_zero_events"`
	Classification     string  `json:"classification"`
	ClosestConstant    string  `json:"closest_constant"`

	Generations int `json:"generations"`
	Evaluations int `json:"evaluations"`
}

// Report builds the serializable view of the winning candidate.
func (r *Result) Report() BestReport {
	cfg := r.Best.Config
	summary := r.Best.Summary
	snapshot := summary.FinalRatioSnapshot
	if math.IsInf(snapshot, 0) {
		// JSON carries no infinities. final_ratio keeps the exact value.
		snapshot = 0
	}
	return BestReport{
		Score:              r.Best.Score,
		Target:             r.Target,
		Strategy:           r.Strategy,
		Engine:             cfg.Engine.String(),
		Psi:                cfg.Psi.String(),
		Koppa:              cfg.Koppa.String(),
		TriplePsi:          cfg.TriplePsi,
		MultiLevelKoppa:    cfg.MultiLevelKoppa,
		Ticks:              cfg.TickCount,
		FinalRatio:         summary.FinalRatioText,
		FinalRatioSnapshot: snapshot,
		PsiEvents:          summary.PsiEvents,
		RhoEvents:          summary.RhoEvents,
		MuZeroEvents:       summary.MuZeroEvents,
		Classification:     summary.Classification,
		ClosestConstant:    summary.ClosestConstant,
		Generations:        r.Generations,
		Evaluations:        r.Evaluations,
	}
}

// WriteBest persists the winning candidate: its full configuration
// document at configPath, ready to replay with the run command, and a
// JSON report at summaryPath. Either path may be empty to skip that
// file.
func (r *Result) WriteBest(configPath, summaryPath string) error {
	if r.Best.Config == nil || r.Best.Summary == nil {
		return fmt.Errorf("search result has no evaluated candidate")
	}
	if math.IsInf(r.Best.Score, -1) {
		return fmt.Errorf("best candidate failed to run")
	}

	if configPath != "" {
		if err := os.WriteFile(configPath, r.Best.Config.CanonicalDocument(), 0644); err != nil {
			return fmt.Errorf("failed to write best config: %w", err)
		}
	}

	if summaryPath != "" {
		data, err := json.MarshalIndent(r.Report(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		data = append(data, '\n')
		if err := os.WriteFile(summaryPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}
