package plans

import "fmt"

// Catalog is an ordered, immutable list of plans. The plan at index 0 is the
// default used when a stored plan name no longer exists.
type Catalog struct {
	plans  []*Plan
	byName map[string]*Plan
}

// NewCatalog builds a catalog from plans in the given order
func NewCatalog(plans ...Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		plans:  make([]*Plan, 0, len(plans)),
		byName: make(map[string]*Plan, len(plans)),
	}
	for i := range plans {
		p := plans[i]
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byName[p.Name]; exists {
			return nil, fmt.Errorf("duplicate plan name: %s", p.Name)
		}
		c.plans = append(c.plans, &p)
		c.byName[p.Name] = &p
	}

	return c, nil
}

// DefaultCatalog returns the built-in plan lineup
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Plan{Name: "Basic", MinuteQuota: IntQuota(10), DataQuota: DataQuotaGB(5), SMSQuota: IntQuota(2)},
		Plan{Name: "Premium", MinuteQuota: IntQuota(100), DataQuota: DataQuotaGB(50), SMSQuota: IntQuota(20)},
		Plan{Name: "Turbo", MinuteQuota: IntQuota(200), DataQuota: DataQuotaGB(100), SMSQuota: IntQuota(50)},
		Plan{Name: "Super Plus", MinuteQuota: IntQuota(500), DataQuota: DataQuotaGB(200), SMSQuota: IntQuota(100)},
		Plan{Name: "Unlimited"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Plans returns the plans in catalog order
func (c *Catalog) Plans() []*Plan {
	out := make([]*Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Len returns the number of plans
func (c *Catalog) Len() int {
	return len(c.plans)
}

// Default returns the fallback plan
func (c *Catalog) Default() *Plan {
	return c.plans[0]
}

// Lookup returns the plan with the given name. Unknown names resolve to the
// default plan; found is false in that case.
func (c *Catalog) Lookup(name string) (plan *Plan, found bool) {
	if p, ok := c.byName[name]; ok {
		return p, true
	}
	return c.Default(), false
}

// ByIndex returns the plan at a 1-based menu position
func (c *Catalog) ByIndex(i int) (*Plan, error) {
	if i < 1 || i > len(c.plans) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, i)
	}
	return c.plans[i-1], nil
}
