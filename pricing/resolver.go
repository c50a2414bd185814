// Package pricing resolves a price estimate from a shop's ranked rule set.
// It is a pure function over already-fetched rules so it stays
// independently testable; rule fetching lives in the repository layer.
package pricing

import (
	"sort"
	"strings"

	"AutoLead/entity"
)

const noMatchMessage = "Стоимость определяется после диагностики"

// Estimate matches the shop's active rules against the repair category and
// optional brand/model and returns the surviving tiers at the top matching
// granularity.
//
// Matching: rules whose category disagrees are out (empty category is
// generic and matches any); rules with a brand filter must equal the given
// brand; rules with a model pattern must match the given model (trailing %
// is a prefix match). Survivors are ordered by priority descending and ties
// at the same priority are all surfaced as separate tiers.
func Estimate(rules []entity.PriceRule, repairCategory, brand, model string) entity.PriceEstimate {
	if repairCategory == "" {
		return entity.PriceEstimate{
			Confidence: entity.ConfidenceNone,
			Message:    noMatchMessage,
		}
	}

	matched := make([]entity.PriceRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.RepairCategory != "" && rule.RepairCategory != repairCategory {
			continue
		}
		if !brandMatches(rule, brand) {
			continue
		}
		if !modelMatches(rule, model) {
			continue
		}
		matched = append(matched, rule)
	}

	if len(matched) == 0 {
		return entity.PriceEstimate{
			Confidence: entity.ConfidenceNone,
			Message:    noMatchMessage,
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})

	// Keep every rule at the best priority: equal-priority rules are
	// distinct tiers (budget part vs original part), not duplicates.
	best := matched[0].Priority
	tiers := make([]entity.PriceTier, 0, len(matched))
	for _, rule := range matched {
		if rule.Priority != best {
			break
		}
		tier := rule.Tier
		if tier == "" {
			tier = "standard"
		}
		label := rule.TierDescription
		if label == "" {
			label = "Стандартный ремонт"
		}
		tiers = append(tiers, entity.PriceTier{
			Tier:           tier,
			Label:          label,
			PriceMin:       rule.PriceMin,
			PriceMax:       rule.PriceMax,
			WarrantyMonths: rule.WarrantyMonths,
			Description:    rule.Notes,
		})
	}

	return entity.PriceEstimate{
		Tiers:      tiers,
		Confidence: confidenceFor(best),
	}
}

func brandMatches(rule entity.PriceRule, brand string) bool {
	if rule.DeviceBrand == "" {
		return true
	}
	if brand == "" {
		return false // rule requires a brand we don't have
	}
	return strings.EqualFold(rule.DeviceBrand, brand)
}

func modelMatches(rule entity.PriceRule, model string) bool {
	if rule.DeviceModelPattern == "" {
		return true
	}
	if model == "" {
		return false
	}
	pattern := strings.ToLower(rule.DeviceModelPattern)
	model = strings.ToLower(model)
	if strings.Contains(pattern, "%") {
		prefix := strings.ReplaceAll(pattern, "%", "")
		return strings.HasPrefix(model, prefix)
	}
	return pattern == model
}

func confidenceFor(priority int) string {
	switch {
	case priority >= entity.PriorityBrandModel:
		return entity.ConfidenceHigh
	case priority >= entity.PriorityBrand:
		return entity.ConfidenceMedium
	default:
		return entity.ConfidenceLow
	}
}
