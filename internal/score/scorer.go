package score

import (
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// Classifier assigns an authority tier to a source URL
type Classifier interface {
	Classify(rawURL string) model.AuthorityTier
}

// Scorer calculates the evidence support index and its signals
type Scorer struct {
	authority Classifier
	now       func() time.Time
}

// NewScorer creates a new scorer
func NewScorer(authority Classifier) *Scorer {
	return &Scorer{authority: authority, now: time.Now}
}

// Calculate summarizes the evidence behind r. links may be nil when the link
// check did not run; accessibility and freshness then score as moderate.
func (s *Scorer) Calculate(r *model.AnalysisResult, links []model.LinkCheck) model.Support {
	var signals []model.Signal
	urls := r.EvidenceURLs()

	// 1. Evidence Coverage (0-40 points)
	coverageScore, coverageSignal := s.calculateCoverage(r.Claims)
	signals = append(signals, coverageSignal)

	// 2. Authority Distribution (0-30 points)
	authorityScore, authoritySignal := s.calculateAuthority(urls)
	signals = append(signals, authoritySignal)

	// 3. Freshness (0-20 points)
	freshnessScore, freshnessSignal := s.calculateFreshness(links)
	signals = append(signals, freshnessSignal)

	// 4. Accessibility (0-10 points)
	accessScore, accessSignal := s.calculateAccessibility(links)
	signals = append(signals, accessSignal)

	// 5. Conflict Detection (penalty)
	conflictDetected, conflictSignal := s.detectConflict(r.Claims)
	if conflictDetected {
		signals = append(signals, conflictSignal)
	}

	totalScore := coverageScore + authorityScore + freshnessScore + accessScore
	if conflictDetected {
		totalScore = max(totalScore-10, 0)
	}

	return model.Support{
		Index:      totalScore,
		Confidence: s.determineConfidence(totalScore, len(urls), conflictDetected),
		Signals:    signals,
	}
}

// calculateCoverage scores the share of claims with at least one source (0-40 points)
func (s *Scorer) calculateCoverage(claims []model.Claim) (int, model.Signal) {
	if len(claims) == 0 {
		return 0, model.Signal{
			Type:        model.SignalEvidenceCoverage,
			Severity:    model.SeverityCritical,
			Description: "No claims returned",
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	supported := 0
	for _, c := range claims {
		for _, ev := range c.Evidence {
			if ev.SourceURL != "" {
				supported++
				break
			}
		}
	}

	ratio := float64(supported) / float64(len(claims))
	score := int(ratio * 40)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalEvidenceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d claims cite a source", supported, len(claims)),
		Data: map[string]interface{}{
			"claims":    len(claims),
			"supported": supported,
			"ratio":     ratio,
			"score":     score,
			"formula":   "supported_claims / claims * 40",
		},
	}
}

// calculateAuthority scores the tier mix of the cited sources (0-30 points)
func (s *Scorer) calculateAuthority(urls []string) (int, model.Signal) {
	if len(urls) == 0 {
		return 0, model.Signal{
			Type:        model.SignalAuthorityDistribution,
			Severity:    model.SeverityWarning,
			Description: "No sources cited",
			Data:        map[string]interface{}{"sources": 0},
		}
	}

	primaryCount := 0
	secondaryCount := 0
	tertiaryCount := 0

	for _, u := range urls {
		switch s.authority.Classify(u) {
		case model.TierPrimary:
			primaryCount++
		case model.TierSecondary:
			secondaryCount++
		default:
			tertiaryCount++
		}
	}

	total := len(urls)
	weightedSum := float64(primaryCount*3 + secondaryCount*2 + tertiaryCount)
	score := int(weightedSum / float64(total*3) * 30)

	severity := model.SeverityInfo
	if primaryCount == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalAuthorityDistribution,
		Severity:    severity,
		Description: fmt.Sprintf("Authority distribution: %d primary, %d secondary, %d tertiary", primaryCount, secondaryCount, tertiaryCount),
		Data: map[string]interface{}{
			"primary":   primaryCount,
			"secondary": secondaryCount,
			"tertiary":  tertiaryCount,
			"total":     total,
			"score":     score,
			"formula":   "(primary*3 + secondary*2 + tertiary*1) / (total*3) * 30",
		},
	}
}

// calculateFreshness scores the median Last-Modified age (0-20 points)
func (s *Scorer) calculateFreshness(links []model.LinkCheck) (int, model.Signal) {
	now := s.now()
	seen := make(map[string]bool)
	var ages []int
	for _, lc := range links {
		if lc.LastModified == nil || seen[lc.URL] {
			continue
		}
		seen[lc.URL] = true
		ages = append(ages, max(int(now.Sub(*lc.LastModified).Hours()/24), 0))
	}

	if len(ages) == 0 {
		return 10, model.Signal{
			Type:        model.SignalFreshness,
			Severity:    model.SeverityInfo,
			Description: "No freshness data available (assuming moderate)",
			Data:        map[string]interface{}{"samples": 0, "score": 10},
		}
	}

	sort.Ints(ages)
	medianAge := ages[len(ages)/2]
	medianAgeYears := float64(medianAge) / 365.0

	// 20 points for fresh sources, 5 fewer per year of age
	score := max(20-int(medianAgeYears*5), 0)

	severity := model.SeverityInfo
	if medianAgeYears > 3 {
		severity = model.SeverityCritical
	} else if medianAgeYears > 1 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalFreshness,
		Severity:    severity,
		Description: fmt.Sprintf("Median source age: %.1f years (%d sources with Last-Modified)", medianAgeYears, len(ages)),
		Data: map[string]interface{}{
			"median_age_days":  medianAge,
			"median_age_years": medianAgeYears,
			"samples":          len(ages),
			"score":            score,
			"formula":          "20 - min(median_age_years * 5, 20)",
		},
	}
}

// calculateAccessibility scores the share of reachable sources (0-10 points)
func (s *Scorer) calculateAccessibility(links []model.LinkCheck) (int, model.Signal) {
	seen := make(map[string]bool)
	checked, accessible := 0, 0
	for _, lc := range links {
		if seen[lc.URL] {
			continue
		}
		seen[lc.URL] = true
		// Cancelled or non-http checks say nothing about the source
		if !lc.IsAccessible && !lc.IsDead && lc.StatusCode == 0 {
			continue
		}
		checked++
		if lc.IsAccessible {
			accessible++
		}
	}

	if checked == 0 {
		return 5, model.Signal{
			Type:        model.SignalAccessibility,
			Severity:    model.SeverityInfo,
			Description: "Links not checked (assuming moderate)",
			Data:        map[string]interface{}{"checked": 0, "score": 5},
		}
	}

	ratio := float64(accessible) / float64(checked)
	score := int(ratio * 10)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalAccessibility,
		Severity:    severity,
		Description: fmt.Sprintf("Accessibility: %d/%d (%.0f%%)", accessible, checked, ratio*100),
		Data: map[string]interface{}{
			"accessible": accessible,
			"total":      checked,
			"ratio":      ratio,
			"score":      score,
			"formula":    "(accessible_count / total) * 10",
		},
	}
}

// detectConflict reports sources cited both for a true and a false claim
func (s *Scorer) detectConflict(claims []model.Claim) (bool, model.Signal) {
	verdicts := make(map[string]map[model.Verdict]bool)
	for _, c := range claims {
		v := c.Verdict.Normalize()
		if v != model.VerdictTrue && v != model.VerdictFalse {
			continue
		}
		for _, ev := range c.Evidence {
			if ev.SourceURL == "" {
				continue
			}
			if verdicts[ev.SourceURL] == nil {
				verdicts[ev.SourceURL] = make(map[model.Verdict]bool)
			}
			verdicts[ev.SourceURL][v] = true
		}
	}

	var conflicting []string
	for u, set := range verdicts {
		if set[model.VerdictTrue] && set[model.VerdictFalse] {
			conflicting = append(conflicting, u)
		}
	}
	if len(conflicting) == 0 {
		return false, model.Signal{}
	}
	sort.Strings(conflicting)

	return true, model.Signal{
		Type:        model.SignalConflict,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d source(s) cited for both a true and a false claim", len(conflicting)),
		Data: map[string]interface{}{
			"sources": conflicting,
			"penalty": 10,
		},
	}
}

// determineConfidence determines the confidence level from the index
func (s *Scorer) determineConfidence(score int, sourceCount int, conflict bool) string {
	if conflict || sourceCount < 3 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	}
	return "low"
}
