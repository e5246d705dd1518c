package plans

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when a catalog is built without plans
	ErrEmptyCatalog = errors.New("catalog must contain at least one plan")
	// ErrInvalidChoice is returned when a 1-based plan index is out of range
	ErrInvalidChoice = errors.New("invalid plan choice")
)

// Plan is a named bundle of optional quotas. A nil quota means unlimited.
type Plan struct {
	Name        string
	MinuteQuota *int
	DataQuota   *float64 // gigabytes
	SMSQuota    *int
}

// IntQuota returns a pointer to v for use as a minute or SMS quota
func IntQuota(v int) *int {
	return &v
}

// DataQuotaGB returns a pointer to v for use as a data quota
func DataQuotaGB(v float64) *float64 {
	return &v
}

// HasDataLimit reports whether the plan caps data usage
func (p *Plan) HasDataLimit() bool {
	return p != nil && p.DataQuota != nil
}

// validate checks the plan's fields
func (p *Plan) validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if p.MinuteQuota != nil && *p.MinuteQuota < 0 {
		return fmt.Errorf("plan %q: minute quota must be non-negative", p.Name)
	}
	if p.DataQuota != nil && *p.DataQuota < 0 {
		return fmt.Errorf("plan %q: data quota must be non-negative", p.Name)
	}
	if p.SMSQuota != nil && *p.SMSQuota < 0 {
		return fmt.Errorf("plan %q: sms quota must be non-negative", p.Name)
	}
	return nil
}

// String renders the plan for listings, e.g. "Basic (10 min, 5 GB, 2 SMS)"
func (p *Plan) String() string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s min, %s GB, %s SMS)",
		p.Name, formatInt(p.MinuteQuota), formatFloat(p.DataQuota), formatInt(p.SMSQuota))
}

func formatInt(v *int) string {
	if v == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%g", *v)
}
