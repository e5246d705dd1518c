package subscribers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/subdesk/pkg/plans"
)

var (
	// ErrNameRequired is returned by New for an empty name
	ErrNameRequired = errors.New("subscriber name is required")
	// ErrPhoneRequired is returned by New for an empty phone number
	ErrPhoneRequired = errors.New("subscriber phone number is required")
	// ErrNegativeUsage is returned when a usage amount or total is below zero
	ErrNegativeUsage = errors.New("usage must be non-negative")
	// ErrInvalidField is returned for a name or phone number containing a line
	// break. Records are stored one per line and such a value would split its row.
	ErrInvalidField = errors.New("field must not contain line breaks")
)

// quotaTolerance absorbs binary rounding when a total lands on the quota,
// e.g. 0.1 + 0.2 against 0.3
const quotaTolerance = 1e-9

// UsageListener is invoked when a usage increment is rejected for exceeding
// the subscriber's data quota
type UsageListener func(*Subscriber)

// Params holds the fields needed to create a subscriber
type Params struct {
	Name         string
	PhoneNumber  string
	Plan         *plans.Plan // optional
	InitialUsage float64
}

// Subscriber is a customer record with an assigned plan and cumulative data usage
type Subscriber struct {
	name        string
	phoneNumber string
	plan        *plans.Plan
	dataUsed    float64
	listeners   []UsageListener
}

// New creates a subscriber from params
func New(p Params) (*Subscriber, error) {
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if p.PhoneNumber == "" {
		return nil, ErrPhoneRequired
	}
	if err := checkField("name", p.Name); err != nil {
		return nil, err
	}
	if err := checkField("phone number", p.PhoneNumber); err != nil {
		return nil, err
	}
	if p.InitialUsage < 0 {
		return nil, ErrNegativeUsage
	}

	return &Subscriber{
		name:        p.Name,
		phoneNumber: p.PhoneNumber,
		plan:        p.Plan,
		dataUsed:    p.InitialUsage,
	}, nil
}

func checkField(field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s %q", ErrInvalidField, field, value)
	}
	return nil
}

// Name returns the subscriber's name
func (s *Subscriber) Name() string { return s.name }

// PhoneNumber returns the subscriber's phone number
func (s *Subscriber) PhoneNumber() string { return s.phoneNumber }

// Plan returns the assigned plan, or nil
func (s *Subscriber) Plan() *plans.Plan { return s.plan }

// DataUsed returns the cumulative data used in GB
func (s *Subscriber) DataUsed() float64 { return s.dataUsed }

// PlanName returns the assigned plan's name, or "" when no plan is assigned
func (s *Subscriber) PlanName() string {
	if s.plan == nil {
		return ""
	}
	return s.plan.Name
}

// SetPhoneNumber replaces the phone number. Blank values are ignored.
func (s *Subscriber) SetPhoneNumber(phone string) error {
	if phone == "" {
		return nil
	}
	if err := checkField("phone number", phone); err != nil {
		return err
	}
	s.phoneNumber = phone
	return nil
}

// SetPlan reassigns the subscriber's plan. nil clears it.
func (s *Subscriber) SetPlan(p *plans.Plan) {
	s.plan = p
}

// AddListener registers a listener. Listeners run in registration order.
func (s *Subscriber) AddListener(l UsageListener) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// Remaining returns the data left under the plan's quota. limited is false
// when there is no plan or the plan has unlimited data.
func (s *Subscriber) Remaining() (remaining float64, limited bool) {
	if !s.plan.HasDataLimit() {
		return 0, false
	}
	remaining = *s.plan.DataQuota - s.dataUsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// RecordUsage adds amount to the data used. When the plan has a data quota
// and the new total would exceed it, nothing is applied, every listener is
// notified, and a *QuotaExceededError is returned. Landing exactly on the
// quota is allowed; totals within 1e-9 GB of it count as landing on it.
func (s *Subscriber) RecordUsage(amount float64) error {
	if amount < 0 {
		return ErrNegativeUsage
	}

	if s.plan.HasDataLimit() {
		limit := *s.plan.DataQuota
		if s.dataUsed+amount > limit+quotaTolerance {
			s.notify()
			return &QuotaExceededError{
				Subscriber: s.name,
				Used:       s.dataUsed,
				Requested:  amount,
				Limit:      limit,
			}
		}
	}

	s.dataUsed += amount
	return nil
}

// SetUsage overwrites the data used. This is an administrative override: no
// quota check and no notification.
func (s *Subscriber) SetUsage(value float64) error {
	if value < 0 {
		return ErrNegativeUsage
	}
	s.dataUsed = value
	return nil
}

func (s *Subscriber) notify() {
	for _, l := range s.listeners {
		l(s)
	}
}

// String renders the subscriber for listings
func (s *Subscriber) String() string {
	planName := s.PlanName()
	if planName == "" {
		planName = "none"
	}
	return fmt.Sprintf("%s (%s) - Plan: %s, Internet used: %g GB", s.name, s.phoneNumber, planName, s.dataUsed)
}
