package insight

import (
	"fmt"
	"math"

	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

// noShowSpike fires when the no-show rate jumped more than 15 points over
// the previous period and at least 5 visits were missed.
func noShowSpike(in Input) *Insight {
	cur := metric.NoShowRate(in.Current)
	prev := metric.NoShowRate(in.Previous)
	delta := cur - prev
	count := metric.NoShowCount(in.Current)

	if delta <= 15 || count < 5 {
		return nil
	}

	severity := SeverityWarning
	if delta > 25 {
		severity = SeverityCritical
	}

	return &Insight{
		Type:     "no-show-spike",
		Title:    "No-shows are spiking",
		Severity: severity,
		Metric:   "noShowRate",
		Delta:    delta,
		Description: fmt.Sprintf("The no-show rate climbed to %.1f%% from %.1f%%: %d missed visits this period.",
			cur, prev, int(count)),
		SuggestedAction: "Turn on appointment reminders and consider a deposit for repeat no-show clients.",
		DrillKey:        drill.Key{Kind: drill.KindStatus, Value: string(normalize.StatusNoShow)},
	}
}

// marginDrop fires when margin fell more than 5 points and the implied
// dollar impact exceeds $100.
func marginDrop(in Input) *Insight {
	cur := metric.ContributionMarginPercent(in.Current, in.CurrentTxns, in.Staff, in.Policy)
	prev := metric.ContributionMarginPercent(in.Previous, in.PreviousTxns, in.Staff, in.Policy)
	delta := cur - prev

	if delta >= -5 {
		return nil
	}

	netSales := metric.NetSalesCents(in.Current)
	impactCents := math.Abs(delta / 100 * netSales)
	if impactCents <= 10000 {
		return nil
	}

	severity := SeverityWarning
	if delta < -10 {
		severity = SeverityCritical
	}

	return &Insight{
		Type:     "margin-drop",
		Title:    "Contribution margin is slipping",
		Severity: severity,
		Metric:   "contributionMarginPct",
		Delta:    delta,
		Description: fmt.Sprintf("Margin fell %.1f points to %.1f%%, roughly $%.0f of profit at this period's sales volume.",
			-delta, cur, impactCents/100),
		SuggestedAction: "Review recent discounting and check whether supply or labor costs moved.",
		DrillKey:        drill.Key{Kind: drill.KindStatus, Value: string(normalize.StatusCompleted)},
	}
}

// rebookWeakness fires when the 7-day rebook rate dropped more than 10 points.
func rebookWeakness(in Input) *Insight {
	cur := metric.RebookRate7d(in.Current)
	prev := metric.RebookRate7d(in.Previous)
	delta := cur - prev

	if delta >= -10 {
		return nil
	}

	severity := SeverityWarning
	if delta < -20 {
		severity = SeverityCritical
	}

	return &Insight{
		Type:     "rebook-weakness",
		Title:    "Fewer clients are rebooking",
		Severity: severity,
		Metric:   "rebookRate7d",
		Delta:    delta,
		Description: fmt.Sprintf("Only %.1f%% of clients rebooked within a week, down from %.1f%%.",
			cur, prev),
		SuggestedAction: "Prompt clients to book their next visit at checkout before they leave.",
		DrillKey:        drill.Key{Kind: drill.KindClientType, Value: string(normalize.ClientReturning)},
	}
}

// staffStandout recognizes a groomer whose revenue per hour clearly exceeds
// the team average. Requires at least 2 staff with nonzero revenue/hour.
func staffStandout(in Input) *Insight {
	byStaff := make(map[string][]normalize.Appointment)
	for _, a := range in.Current {
		if a.StaffID != "" {
			byStaff[a.StaffID] = append(byStaff[a.StaffID], a)
		}
	}

	type perf struct {
		id  string
		rph float64
	}

	var performers []perf
	for id, appts := range byStaff {
		if rph := metric.RevenuePerHourCents(appts); rph > 0 {
			performers = append(performers, perf{id: id, rph: rph})
		}
	}

	if len(performers) < 2 {
		return nil
	}

	var sum float64
	for _, p := range performers {
		sum += p.rph
	}
	avg := sum / float64(len(performers))

	// Map iteration is unordered; pick the highest performer deterministically.
	var best *perf
	for i := range performers {
		p := &performers[i]
		if p.rph > avg*1.3 && (best == nil || p.rph > best.rph || (p.rph == best.rph && p.id < best.id)) {
			best = p
		}
	}
	if best == nil {
		return nil
	}

	name := best.id
	if s := in.Staff[best.id]; s != nil && s.Name != "" {
		name = s.Name
	}

	return &Insight{
		Type:            "staff-standout",
		Title:           fmt.Sprintf("%s is outperforming the team", name),
		Severity:        SeverityPositive,
		Metric:          "revenuePerHour",
		Delta:           best.rph - avg,
		ImpactedSegment: name,
		Description: fmt.Sprintf("%s is earning $%.0f/hour against a team average of $%.0f/hour.",
			name, best.rph/100, avg/100),
		SuggestedAction: "Look at their service mix and scheduling, there may be a repeatable pattern.",
		DrillKey:        drill.Key{Kind: drill.KindStaff, Value: name},
	}
}

// inventoryRisk fires when a supply item is out of stock, or projected to
// run out within the policy's low-supply threshold using appointment volume
// as the demand proxy.
func inventoryRisk(in Input) *Insight {
	demandWindow := in.Policy.DemandWindowDays
	if demandWindow <= 0 {
		demandWindow = 30
	}
	dailyAppts := float64(in.RecentAppointments) / float64(demandWindow)

	var zeroStock []string
	var lowDays []string
	for _, item := range in.Inventory {
		if item.OnHand == 0 {
			zeroStock = append(zeroStock, item.Name)
			continue
		}
		if item.AtRisk(dailyAppts, in.Policy.LowSupplyDays) {
			lowDays = append(lowDays, item.Name)
		}
	}

	if len(zeroStock) == 0 && len(lowDays) == 0 {
		return nil
	}

	severity := SeverityWarning
	segment := ""
	description := ""
	switch {
	case len(zeroStock) > 0:
		severity = SeverityCritical
		segment = zeroStock[0]
		description = fmt.Sprintf("%s is out of stock; %d item(s) need reordering.",
			zeroStock[0], len(zeroStock)+len(lowDays))
	default:
		segment = lowDays[0]
		description = fmt.Sprintf("%s is projected to run out within %.0f days at the current appointment pace.",
			lowDays[0], in.Policy.LowSupplyDays)
	}

	return &Insight{
		Type:            "inventory-risk",
		Title:           "Supplies are running low",
		Severity:        severity,
		Metric:          "productCost",
		ImpactedSegment: segment,
		Description:     description,
		SuggestedAction: "Reorder before the shortfall forces service changes.",
		DrillKey:        drill.Key{Kind: drill.KindInventory, Value: "risk"},
	}
}

// campaignROI flags the first campaign with an extreme return: under 0.5x
// is a problem, over 3x is worth doubling down on.
func campaignROI(in Input) *Insight {
	if len(in.Messages) == 0 {
		return nil
	}

	type campaign struct {
		name    string
		cost    int64
		revenue int64
	}

	totals := make(map[string]*campaign)
	var order []string
	for i := range in.Messages {
		m := &in.Messages[i]
		name := m.CampaignName
		if name == "" {
			name = m.CampaignID
		}
		if name == "" {
			continue
		}

		c, ok := totals[name]
		if !ok {
			c = &campaign{name: name}
			totals[name] = c
			order = append(order, name)
		}
		c.cost += m.CostCents
		c.revenue += m.AttributedRevenueCents
	}

	for _, name := range order {
		c := totals[name]
		if c.cost == 0 {
			continue
		}

		roi := float64(c.revenue-c.cost) / float64(c.cost)

		switch {
		case roi < 0.5:
			severity := SeverityWarning
			if roi < 0 {
				severity = SeverityCritical
			}
			return &Insight{
				Type:            "campaign-roi",
				Title:           fmt.Sprintf("Campaign %q is not paying for itself", c.name),
				Severity:        severity,
				Metric:          "netSales",
				Delta:           roi,
				ImpactedSegment: c.name,
				Description: fmt.Sprintf("%q returned %.1fx on $%.0f of spend.",
					c.name, roi, float64(c.cost)/100),
				SuggestedAction: "Pause or rework the campaign message and audience.",
				DrillKey:        drill.Key{Kind: drill.KindCampaign, Value: c.name},
			}
		case roi > 3.0:
			return &Insight{
				Type:            "campaign-roi",
				Title:           fmt.Sprintf("Campaign %q is a winner", c.name),
				Severity:        SeverityPositive,
				Metric:          "netSales",
				Delta:           roi,
				ImpactedSegment: c.name,
				Description: fmt.Sprintf("%q returned %.1fx on $%.0f of spend.",
					c.name, roi, float64(c.cost)/100),
				SuggestedAction: "Increase the budget or rerun it for a similar client segment.",
				DrillKey:        drill.Key{Kind: drill.KindCampaign, Value: c.name},
			}
		}
	}

	return nil
}
