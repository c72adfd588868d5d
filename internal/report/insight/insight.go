// Package insight evaluates a fixed, ordered set of heuristic rules over the
// current and previous reporting windows and surfaces the few most actionable
// anomalies. Each invocation is stateless; ids are deterministic so identical
// inputs reproduce identical insights.
package insight

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

// Severity orders insights from most to least urgent.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityPositive Severity = "positive"
	SeverityInfo     Severity = "info"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityPositive:
		return 2
	default:
		return 3
	}
}

// Insight is one surfaced anomaly with a drill key justifying it.
type Insight struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Metric          string    `json:"metric"`
	Delta           float64   `json:"delta"`
	ImpactedSegment string    `json:"impactedSegment,omitempty"`
	SuggestedAction string    `json:"suggestedAction"`
	Severity        Severity  `json:"severity"`
	DrillKey        drill.Key `json:"drillKey,omitempty"`
}

// MaxInsights caps how many insights one view surfaces.
const MaxInsights = 3

// Input carries both windows' normalized data. Subsets are pre-filtered; the
// engine never re-filters.
type Input struct {
	Current      []normalize.Appointment
	Previous     []normalize.Appointment
	CurrentTxns  []normalize.Transaction
	PreviousTxns []normalize.Transaction
	Inventory    []normalize.InventoryItem
	Messages     []normalize.Message
	Staff        map[string]*normalize.Staff

	// RecentAppointments counts appointments over the policy's demand
	// window, the proxy for daily inventory demand.
	RecentAppointments int

	Window period.Window
	Policy config.Policy
}

// rule evaluates one heuristic; nil means the rule did not fire.
type rule func(Input) *Insight

// rules run in a fixed order; each contributes at most one insight.
var rules = []rule{
	noShowSpike,
	marginDrop,
	rebookWeakness,
	staffStandout,
	inventoryRisk,
	campaignROI,
}

// Generate runs every rule, ranks the fired insights by severity, and
// returns at most MaxInsights of them.
func Generate(in Input) []Insight {
	var fired []Insight
	for _, r := range rules {
		if ins := r(in); ins != nil {
			ins.ID = insightID(ins.Type, in.Window, ins.ImpactedSegment)
			fired = append(fired, *ins)
		}
	}

	sort.SliceStable(fired, func(i, j int) bool {
		return severityRank(fired[i].Severity) < severityRank(fired[j].Severity)
	})

	if len(fired) > MaxInsights {
		fired = fired[:MaxInsights]
	}

	return fired
}

// insightID hashes the rule type, period bounds, and impacted segment so a
// rerun over identical inputs produces the identical id.
func insightID(ruleType string, w period.Window, segment string) string {
	h := fnv.New64a()
	h.Write([]byte(ruleType))
	h.Write([]byte(w.Start.UTC().Format(time.RFC3339)))
	h.Write([]byte(w.End.UTC().Format(time.RFC3339)))
	h.Write([]byte(segment))

	return fmt.Sprintf("%s-%016x", ruleType, h.Sum64())
}
