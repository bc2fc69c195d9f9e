package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MeasurementModel is the IFRS 17 accounting methodology of a model definition
type MeasurementModel string

const (
	// MeasurementModelGMM is the General Measurement Model (building block approach)
	MeasurementModelGMM MeasurementModel = "GMM"
	// MeasurementModelPAA is the Premium Allocation Approach
	MeasurementModelPAA MeasurementModel = "PAA"
	// MeasurementModelVFA is the Variable Fee Approach
	MeasurementModelVFA MeasurementModel = "VFA"
)

func AllMeasurementModels() []MeasurementModel {
	return []MeasurementModel{
		MeasurementModelGMM,
		MeasurementModelPAA,
		MeasurementModelVFA,
	}
}

func (m MeasurementModel) IsValid() bool {
	switch m {
	case MeasurementModelGMM, MeasurementModelPAA, MeasurementModelVFA:
		return true
	default:
		return false
	}
}

func (m MeasurementModel) String() string {
	return string(m)
}

// ParseMeasurementModel parses a string case-insensitively
func ParseMeasurementModel(s string) (MeasurementModel, error) {
	m := MeasurementModel(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", goerr.New("invalid measurement model", goerr.V("measurement_model", s))
	}
	return m, nil
}
