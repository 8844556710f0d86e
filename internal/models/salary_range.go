package models

import (
	"fmt"
	"strings"

	"github.com/michaelprosario/career-catalyst/internal/errors"
)

type SalaryPeriod string

const (
	SalaryPeriodHourly  SalaryPeriod = "HOURLY"
	SalaryPeriodDaily   SalaryPeriod = "DAILY"
	SalaryPeriodWeekly  SalaryPeriod = "WEEKLY"
	SalaryPeriodMonthly SalaryPeriod = "MONTHLY"
	SalaryPeriodYearly  SalaryPeriod = "YEARLY"
)

func (p SalaryPeriod) Valid() bool {
	switch p {
	case SalaryPeriodHourly, SalaryPeriodDaily, SalaryPeriodWeekly, SalaryPeriodMonthly, SalaryPeriodYearly:
		return true
	}
	return false
}

// SalaryRange is immutable once constructed.
type SalaryRange struct {
	min      float64
	max      float64
	currency string
	period   SalaryPeriod
}

func NewSalaryRange(min, max float64, currency string, period SalaryPeriod) (SalaryRange, error) {
	if min < 0 || max < 0 {
		return SalaryRange{}, errors.InvalidInput("Salary amounts must be non-negative", nil)
	}
	if min > max {
		return SalaryRange{}, errors.InvalidInput("Minimum salary cannot be greater than maximum salary", nil)
	}
	p := SalaryPeriod(strings.ToUpper(string(period)))
	if !p.Valid() {
		return SalaryRange{}, errors.InvalidInput(fmt.Sprintf("Invalid salary period %q", period), nil)
	}
	return SalaryRange{min: min, max: max, currency: currency, period: p}, nil
}

func (r SalaryRange) Min() float64         { return r.min }
func (r SalaryRange) Max() float64         { return r.max }
func (r SalaryRange) Currency() string     { return r.currency }
func (r SalaryRange) Period() SalaryPeriod { return r.period }

func (r SalaryRange) String() string {
	return fmt.Sprintf("%.2f-%.2f %s/%s", r.min, r.max, r.currency, r.period)
}
