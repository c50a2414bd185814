package pricing

import (
	"testing"

	"AutoLead/entity"
)

func rule(id, category, brand, pattern string, min, max float64, priority int) entity.PriceRule {
	return entity.PriceRule{
		ID:                 id,
		ShopID:             "shop-1",
		RepairCategory:     category,
		DeviceBrand:        brand,
		DeviceModelPattern: pattern,
		PriceMin:           min,
		PriceMax:           max,
		IsActive:           true,
		Priority:           priority,
	}
}

func TestEstimate_MostSpecificRuleWins(t *testing.T) {
	rules := []entity.PriceRule{
		rule("generic", "brake_repair", "", "", 2000, 6000, entity.PriorityGeneric),
		rule("brand", "brake_repair", "Toyota", "", 3000, 7000, entity.PriorityBrand),
		rule("model", "brake_repair", "Toyota", "Camry%", 4000, 8000, entity.PriorityBrandModel),
	}

	est := Estimate(rules, "brake_repair", "Toyota", "Camry 2018")

	if est.Confidence != entity.ConfidenceHigh {
		t.Errorf("expected high confidence, got %q", est.Confidence)
	}
	if len(est.Tiers) != 1 {
		t.Fatalf("expected 1 tier, got %d", len(est.Tiers))
	}
	if est.Tiers[0].PriceMin != 4000 || est.Tiers[0].PriceMax != 8000 {
		t.Errorf("expected brand+model rule, got %v-%v", est.Tiers[0].PriceMin, est.Tiers[0].PriceMax)
	}
}

func TestEstimate_BrandFallback(t *testing.T) {
	rules := []entity.PriceRule{
		rule("generic", "brake_repair", "", "", 2000, 6000, entity.PriorityGeneric),
		rule("brand", "brake_repair", "Toyota", "", 3000, 7000, entity.PriorityBrand),
	}

	est := Estimate(rules, "brake_repair", "Toyota", "Corolla")
	if est.Confidence != entity.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %q", est.Confidence)
	}
	if est.Tiers[0].PriceMin != 3000 {
		t.Errorf("expected brand rule, got min %v", est.Tiers[0].PriceMin)
	}

	est = Estimate(rules, "brake_repair", "BMW", "")
	if est.Confidence != entity.ConfidenceLow {
		t.Errorf("expected generic fallback for other brand, got %q", est.Confidence)
	}
}

func TestEstimate_EqualPriorityTiersAllSurface(t *testing.T) {
	budget := rule("budget", "suspension_repair", "", "", 3000, 4000, entity.PriorityGeneric)
	budget.Tier = "budget"
	budget.TierDescription = "Бюджетная запчасть"
	original := rule("original", "suspension_repair", "", "", 7000, 9000, entity.PriorityGeneric)
	original.Tier = "original"
	original.TierDescription = "Оригинал"

	est := Estimate([]entity.PriceRule{budget, original}, "suspension_repair", "", "")

	if len(est.Tiers) != 2 {
		t.Fatalf("expected both tiers surfaced, got %d", len(est.Tiers))
	}
	min, max, ok := est.Range()
	if !ok || min != 3000 || max != 9000 {
		t.Errorf("expected range 3000-9000, got %v-%v ok=%v", min, max, ok)
	}
}

func TestEstimate_ModelPrefixPattern(t *testing.T) {
	rules := []entity.PriceRule{
		rule("model", "brake_repair", "Toyota", "camry%", 4000, 8000, entity.PriorityBrandModel),
	}

	if est := Estimate(rules, "brake_repair", "toyota", "CAMRY 70"); len(est.Tiers) != 1 {
		t.Error("expected case-insensitive prefix match")
	}
	if est := Estimate(rules, "brake_repair", "Toyota", "Corolla"); est.Confidence != entity.ConfidenceNone {
		t.Errorf("expected no match for other model, got %q", est.Confidence)
	}
}

func TestEstimate_NoCategory(t *testing.T) {
	rules := []entity.PriceRule{rule("generic", "", "", "", 1000, 2000, entity.PriorityGeneric)}

	est := Estimate(rules, "", "Toyota", "Camry")
	if est.Confidence != entity.ConfidenceNone {
		t.Errorf("expected none confidence without a category, got %q", est.Confidence)
	}
	if est.Message == "" {
		t.Error("expected the diagnostics message")
	}
}

func TestEstimate_InactiveRulesIgnored(t *testing.T) {
	inactive := rule("off", "brake_repair", "", "", 1000, 2000, entity.PriorityGeneric)
	inactive.IsActive = false

	est := Estimate([]entity.PriceRule{inactive}, "brake_repair", "", "")
	if est.Confidence != entity.ConfidenceNone {
		t.Errorf("expected inactive rule skipped, got %q", est.Confidence)
	}
}

func TestEstimate_RuleRequiringBrandSkippedWithoutBrand(t *testing.T) {
	rules := []entity.PriceRule{
		rule("brand", "brake_repair", "Toyota", "", 3000, 7000, entity.PriorityBrand),
	}

	est := Estimate(rules, "brake_repair", "", "")
	if est.Confidence != entity.ConfidenceNone {
		t.Errorf("expected no match without the required brand, got %q", est.Confidence)
	}
}
