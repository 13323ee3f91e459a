package analytics

import (
	"sort"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// ROIResult is the return of one distribution experiment. Revenue is
// installs times ARPU; ROI is a percentage of spend.
type ROIResult struct {
	Revenue    float64 `json:"revenue" yaml:"revenue"`
	ROI        float64 `json:"roi" yaml:"roi"`
	Profitable bool    `json:"profitable" yaml:"profitable"`
}

// ROI returns nil when spend or installs is not positive.
func ROI(d *store.DistributionExperiment) *ROIResult {
	m := d.Metrics
	if m.Spent <= 0 || m.Installs <= 0 {
		return nil
	}
	revenue := float64(m.Installs) * m.ARPU
	roi := (revenue - m.Spent) / m.Spent * 100
	return &ROIResult{Revenue: round2(revenue), ROI: round2(roi), Profitable: roi > 0}
}

// GrowthOverall aggregates every distribution experiment. Totals cover all
// of them; averages only the completed ones with installs, counted by
// SampleSize.
type GrowthOverall struct {
	TotalExperiments     int      `json:"totalExperiments" yaml:"totalExperiments"`
	CompletedExperiments int      `json:"completedExperiments" yaml:"completedExperiments"`
	RunningExperiments   int      `json:"runningExperiments" yaml:"runningExperiments"`
	TotalInstalls        int      `json:"totalInstalls" yaml:"totalInstalls"`
	TotalSpent           float64  `json:"totalSpent" yaml:"totalSpent"`
	TotalRevenue         float64  `json:"totalRevenue" yaml:"totalRevenue"`
	OverallROI           *float64 `json:"overallROI" yaml:"overallROI"`
	SampleSize           int      `json:"sampleSize" yaml:"sampleSize"`
	AvgCPI               float64  `json:"avgCPI" yaml:"avgCPI"`
	AvgRetentionR1       float64  `json:"avgRetentionR1" yaml:"avgRetentionR1"`
	AvgRetentionR7       float64  `json:"avgRetentionR7" yaml:"avgRetentionR7"`
	AvgRetentionR30      float64  `json:"avgRetentionR30" yaml:"avgRetentionR30"`
	AvgARPU              float64  `json:"avgARPU" yaml:"avgARPU"`
	AvgLTV               float64  `json:"avgLTV" yaml:"avgLTV"`
	AvgKFactor           float64  `json:"avgKFactor" yaml:"avgKFactor"`
	ProfitableChannels   int      `json:"profitableChannels" yaml:"profitableChannels"`
}

func OverallGrowthMetrics(doc *store.Document) GrowthOverall {
	var g GrowthOverall
	var cpi, r1, r7, r30, arpu, ltv, k float64
	for _, d := range doc.DistributionExperiments {
		m := d.Metrics
		g.TotalExperiments++
		g.TotalInstalls += m.Installs
		g.TotalSpent += m.Spent
		g.TotalRevenue += float64(m.Installs) * m.ARPU

		switch d.Status {
		case store.DistributionRunning:
			g.RunningExperiments++
		case store.DistributionCompleted:
			g.CompletedExperiments++
			if m.Installs <= 0 {
				continue
			}
			g.SampleSize++
			cpi += m.CPI
			r1 += m.RetentionR1
			r7 += m.RetentionR7
			r30 += m.RetentionR30
			arpu += m.ARPU
			ltv += m.LTV
			k += m.KFactor
			if r := ROI(d); r != nil && r.Profitable {
				g.ProfitableChannels++
			}
		}
	}

	if g.TotalSpent > 0 {
		roi := round2((g.TotalRevenue - g.TotalSpent) / g.TotalSpent * 100)
		g.OverallROI = &roi
	}
	g.TotalSpent = round2(g.TotalSpent)
	g.TotalRevenue = round2(g.TotalRevenue)

	if n := float64(g.SampleSize); n > 0 {
		g.AvgCPI = round2(cpi / n)
		g.AvgRetentionR1 = round1(r1 / n)
		g.AvgRetentionR7 = round1(r7 / n)
		g.AvgRetentionR30 = round1(r30 / n)
		g.AvgARPU = round2(arpu / n)
		g.AvgLTV = round2(ltv / n)
		g.AvgKFactor = round2(k / n)
	}
	return g
}

// ChannelStats rolls up the experiments of one channel. Averages cover
// the experiments with installs; ROI is nil when nothing was spent.
type ChannelStats struct {
	Channel       store.Channel `json:"channel" yaml:"channel"`
	Experiments   int           `json:"experiments" yaml:"experiments"`
	TotalInstalls int           `json:"totalInstalls" yaml:"totalInstalls"`
	TotalSpent    float64       `json:"totalSpent" yaml:"totalSpent"`
	TotalRevenue  float64       `json:"totalRevenue" yaml:"totalRevenue"`
	AvgCPI        float64       `json:"avgCPI" yaml:"avgCPI"`
	AvgRetention  float64       `json:"avgRetention" yaml:"avgRetention"`
	AvgARPU       float64       `json:"avgARPU" yaml:"avgARPU"`
	ROI           *float64      `json:"roi" yaml:"roi"`
}

// AnalyzeByChannel groups experiments by channel, most installs first.
// AvgRetention is the mean day-7 retention.
func AnalyzeByChannel(doc *store.Document) []ChannelStats {
	type acc struct {
		stats              ChannelStats
		withData           int
		cpi, r7, arpu, rev float64
	}
	var order []store.Channel
	byChannel := make(map[store.Channel]*acc)

	for _, d := range doc.DistributionExperiments {
		a, ok := byChannel[d.Channel]
		if !ok {
			a = &acc{stats: ChannelStats{Channel: d.Channel}}
			byChannel[d.Channel] = a
			order = append(order, d.Channel)
		}
		m := d.Metrics
		a.stats.Experiments++
		a.stats.TotalInstalls += m.Installs
		a.stats.TotalSpent += m.Spent
		a.rev += float64(m.Installs) * m.ARPU
		if m.Installs > 0 {
			a.withData++
			a.cpi += m.CPI
			a.r7 += m.RetentionR7
			a.arpu += m.ARPU
		}
	}

	out := make([]ChannelStats, 0, len(order))
	for _, ch := range order {
		a := byChannel[ch]
		s := a.stats
		if a.withData > 0 {
			n := float64(a.withData)
			s.AvgCPI = round2(a.cpi / n)
			s.AvgRetention = round1(a.r7 / n)
			s.AvgARPU = round2(a.arpu / n)
		}
		if s.TotalSpent > 0 {
			roi := round2((a.rev - s.TotalSpent) / s.TotalSpent * 100)
			s.ROI = &roi
		}
		s.TotalSpent = round2(s.TotalSpent)
		s.TotalRevenue = round2(a.rev)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalInstalls > out[j].TotalInstalls
	})
	return out
}

// ChannelRankLimit caps BestChannels and WorstChannels.
const ChannelRankLimit = 3

// BestChannels returns the channels with positive ROI, highest first.
func BestChannels(doc *store.Document) []ChannelStats {
	return rankChannels(doc, func(roi float64) bool { return roi > 0 }, func(a, b float64) bool { return a > b })
}

// WorstChannels returns the channels with negative ROI, lowest first.
func WorstChannels(doc *store.Document) []ChannelStats {
	return rankChannels(doc, func(roi float64) bool { return roi < 0 }, func(a, b float64) bool { return a < b })
}

func rankChannels(doc *store.Document, keep func(float64) bool, less func(a, b float64) bool) []ChannelStats {
	var out []ChannelStats
	for _, s := range AnalyzeByChannel(doc) {
		if s.ROI != nil && keep(*s.ROI) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(*out[i].ROI, *out[j].ROI) })
	if len(out) > ChannelRankLimit {
		out = out[:ChannelRankLimit]
	}
	return out
}

type CreativeRow struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Channel        store.Channel `json:"channel" yaml:"channel"`
	Impressions    int           `json:"impressions" yaml:"impressions"`
	CTR            float64       `json:"ctr" yaml:"ctr"`
	HookRate       float64       `json:"hookRate" yaml:"hookRate"`
	HoldRate       float64       `json:"holdRate" yaml:"holdRate"`
	ConversionRate float64       `json:"conversionRate" yaml:"conversionRate"`
	CPI            float64       `json:"cpi" yaml:"cpi"`
	ROI            *float64      `json:"roi" yaml:"roi"`
	Profitable     bool          `json:"profitable" yaml:"profitable"`
}

// CompareCreatives ranks paid experiments that have impressions by ROI,
// highest first. Rows without an ROI sort last.
func CompareCreatives(doc *store.Document) []CreativeRow {
	var rows []CreativeRow
	for _, d := range doc.DistributionExperiments {
		m := d.Metrics
		if d.Type != store.DistributionPaid || m.Impressions <= 0 {
			continue
		}
		row := CreativeRow{
			ID:             d.ID,
			Name:           d.Name,
			Channel:        d.Channel,
			Impressions:    m.Impressions,
			CTR:            m.CTR,
			HookRate:       m.HookRate,
			HoldRate:       m.HoldRate,
			ConversionRate: m.ConversionRate,
			CPI:            m.CPI,
		}
		if r := ROI(d); r != nil {
			roi := r.ROI
			row.ROI = &roi
			row.Profitable = r.Profitable
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].ROI, rows[j].ROI
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return rows
}

type ViralSummary struct {
	HasViralLoops      bool    `json:"hasViralLoops" yaml:"hasViralLoops"`
	AvgKFactor         float64 `json:"avgKFactor" yaml:"avgKFactor"`
	AvgShareRate       float64 `json:"avgShareRate" yaml:"avgShareRate"`
	TotalViralInstalls int     `json:"totalViralInstalls" yaml:"totalViralInstalls"`
	IsViral            bool    `json:"isViral" yaml:"isViral"`
}

// AnalyzeViralMetrics covers viral-type experiments and the viral_loop
// channel. IsViral holds when the average k-factor exceeds 1.
func AnalyzeViralMetrics(doc *store.Document) ViralSummary {
	var v ViralSummary
	var n int
	var k, share float64
	for _, d := range doc.DistributionExperiments {
		if d.Type != store.DistributionViral && d.Channel != store.ChannelViralLoop {
			continue
		}
		n++
		v.TotalViralInstalls += d.Metrics.Installs
		k += d.Metrics.KFactor
		share += d.Metrics.ShareRate
	}
	if n == 0 {
		return v
	}
	avgK := k / float64(n)
	v.HasViralLoops = true
	v.AvgKFactor = round2(avgK)
	v.AvgShareRate = round1(share / float64(n))
	v.IsViral = avgK > 1
	return v
}

type Cohort struct {
	Channel  store.Channel `json:"channel" yaml:"channel"`
	Installs int           `json:"installs" yaml:"installs"`
	AvgR1    float64       `json:"avgR1" yaml:"avgR1"`
	AvgR7    float64       `json:"avgR7" yaml:"avgR7"`
	AvgR30   float64       `json:"avgR30" yaml:"avgR30"`
}

// AnalyzeCohortRetention averages retention per channel over experiments
// with installs and a day-1 retention figure. It returns nil when no
// experiment qualifies.
func AnalyzeCohortRetention(doc *store.Document) []Cohort {
	type acc struct {
		cohort      Cohort
		n           int
		r1, r7, r30 float64
	}
	var order []store.Channel
	byChannel := make(map[store.Channel]*acc)
	for _, d := range doc.DistributionExperiments {
		m := d.Metrics
		if m.Installs <= 0 || m.RetentionR1 <= 0 {
			continue
		}
		a, ok := byChannel[d.Channel]
		if !ok {
			a = &acc{cohort: Cohort{Channel: d.Channel}}
			byChannel[d.Channel] = a
			order = append(order, d.Channel)
		}
		a.n++
		a.cohort.Installs += m.Installs
		a.r1 += m.RetentionR1
		a.r7 += m.RetentionR7
		a.r30 += m.RetentionR30
	}
	if len(order) == 0 {
		return nil
	}
	out := make([]Cohort, 0, len(order))
	for _, ch := range order {
		a := byChannel[ch]
		n := float64(a.n)
		c := a.cohort
		c.AvgR1 = round1(a.r1 / n)
		c.AvgR7 = round1(a.r7 / n)
		c.AvgR30 = round1(a.r30 / n)
		out = append(out, c)
	}
	return out
}

type InsightItem struct {
	Text           string        `json:"text" yaml:"text"`
	Channel        store.Channel `json:"channel" yaml:"channel"`
	ExperimentName string        `json:"experimentName" yaml:"experimentName"`
}

type ChannelInsights struct {
	WhatWorked    []InsightItem `json:"whatWorked" yaml:"whatWorked"`
	WhatDidntWork []InsightItem `json:"whatDidntWork" yaml:"whatDidntWork"`
	KeyLearnings  []InsightItem `json:"keyLearnings" yaml:"keyLearnings"`
}

// DistributionInsights collects the result notes of completed experiments,
// each tagged with where it came from.
func DistributionInsights(doc *store.Document) ChannelInsights {
	out := ChannelInsights{
		WhatWorked:    []InsightItem{},
		WhatDidntWork: []InsightItem{},
		KeyLearnings:  []InsightItem{},
	}
	tag := func(dst []InsightItem, d *store.DistributionExperiment, texts []string) []InsightItem {
		for _, t := range texts {
			dst = append(dst, InsightItem{Text: t, Channel: d.Channel, ExperimentName: d.Name})
		}
		return dst
	}
	for _, d := range doc.DistributionExperiments {
		if d.Status != store.DistributionCompleted {
			continue
		}
		out.WhatWorked = tag(out.WhatWorked, d, d.Results.WhatWorked)
		out.WhatDidntWork = tag(out.WhatDidntWork, d, d.Results.WhatDidntWork)
		out.KeyLearnings = tag(out.KeyLearnings, d, d.Results.KeyLearnings)
	}
	return out
}

// PredictLTV estimates lifetime value as arpu / (1 - r), where r is the
// mean of the three retention percentages. ok is false when r reaches 100%.
func PredictLTV(r1, r7, r30, arpu float64) (float64, bool) {
	avg := (r1 + r7 + r30) / 3 / 100
	if avg >= 1 {
		return 0, false
	}
	return round2(arpu / (1 - avg)), true
}
