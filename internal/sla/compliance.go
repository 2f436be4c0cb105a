package sla

import (
	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// CheckCompliance compares a computed metric against its target. Unknown
// values pass through unchanged; meeting the target exactly is compliant.
func CheckCompliance(actual *int64, targetSeconds int64) domain.Compliance {
	if actual == nil {
		return domain.ComplianceUnknown
	}
	if *actual <= targetSeconds {
		return domain.ComplianceCompliant
	}
	return domain.ComplianceBreached
}

// OverallCompliance folds the enabled per-metric flags into one verdict with
// unknown-propagation semantics: an empty enabled set is unknown, any enabled
// unknown makes the whole verdict unknown, all-compliant is compliant, and
// only a fully-known set with at least one breach is breached.
func OverallCompliance(flags domain.ComplianceFlags, enabled domain.EnabledMetrics) domain.Compliance {
	var selected []domain.Compliance
	if enabled.Pickup {
		selected = append(selected, flags.Pickup)
	}
	if enabled.FirstResponse {
		selected = append(selected, flags.FirstResponse)
	}
	if enabled.AvgResponse {
		selected = append(selected, flags.AvgResponse)
	}
	if enabled.Resolution {
		selected = append(selected, flags.Resolution)
	}

	if len(selected) == 0 {
		return domain.ComplianceUnknown
	}

	verdict := domain.ComplianceCompliant
	for _, f := range selected {
		switch f {
		case domain.ComplianceUnknown:
			return domain.ComplianceUnknown
		case domain.ComplianceBreached:
			verdict = domain.ComplianceBreached
		}
	}
	return verdict
}
