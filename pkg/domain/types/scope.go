package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Wildcard matches every LOB or every year in an override scope
const Wildcard = "ALL"

var (
	lobPattern  = regexp.MustCompile(`^[A-Z0-9]+(_[A-Z0-9]+)*$`)
	yearPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// LOB is a Line of Business code such as TERM_LIFE
type LOB string

// IsWildcard reports whether the LOB matches every line of business
func (l LOB) IsWildcard() bool {
	return l == Wildcard
}

// Validate checks if the LOB is a wildcard or an upper snake case code
func (l LOB) Validate() error {
	if l == "" {
		return goerr.New("LOB cannot be empty")
	}
	if !lobPattern.MatchString(string(l)) {
		return goerr.New("LOB must be upper snake case", goerr.V("lob", l))
	}
	return nil
}

func (l LOB) String() string {
	return string(l)
}

// Year is a projection year or the wildcard
type Year string

func (y Year) IsWildcard() bool {
	return y == Wildcard
}

// Validate checks if the Year is a wildcard or four digits
func (y Year) Validate() error {
	if y.IsWildcard() {
		return nil
	}
	if !yearPattern.MatchString(string(y)) {
		return goerr.New("year must be ALL or a four digit year", goerr.V("year", y))
	}
	return nil
}

func (y Year) String() string {
	return string(y)
}

// ProductType identifies the insurance product a model definition covers
type ProductType string

func (p ProductType) Validate() error {
	if p == "" {
		return goerr.New("product type cannot be empty")
	}
	if !lobPattern.MatchString(string(p)) {
		return goerr.New("product type must be upper snake case", goerr.V("product_type", p))
	}
	return nil
}

func (p ProductType) String() string {
	return string(p)
}
