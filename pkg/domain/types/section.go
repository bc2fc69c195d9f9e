package types

import "github.com/m-mizutani/goerr/v2"

// SectionID identifies a functional area of a model configuration
type SectionID string

const (
	SectionProjectionAssumptions SectionID = "projection_assumptions"
	SectionRiskAdjustment        SectionID = "risk_adjustment"
	SectionDiscountRates         SectionID = "discount_rates"
	SectionAccountingRules       SectionID = "accounting_rules"
	SectionActuarialRules        SectionID = "actuarial_rules"
)

// AllSections returns every section in display order
func AllSections() []SectionID {
	return []SectionID{
		SectionProjectionAssumptions,
		SectionRiskAdjustment,
		SectionDiscountRates,
		SectionAccountingRules,
		SectionActuarialRules,
	}
}

// Order returns the display position of the section. Unknown sections sort last.
func (s SectionID) Order() int {
	for i, id := range AllSections() {
		if id == s {
			return i
		}
	}
	return len(AllSections())
}

func (s SectionID) IsValid() bool {
	return s.Order() < len(AllSections())
}

func (s SectionID) Validate() error {
	if !s.IsValid() {
		return goerr.New("unknown configuration section", goerr.V("section", s))
	}
	return nil
}

func (s SectionID) String() string {
	return string(s)
}
