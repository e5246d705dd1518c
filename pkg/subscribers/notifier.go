package subscribers

import "github.com/sirupsen/logrus"

// NewLimitNotifier returns a listener that logs a warning whenever a
// subscriber's usage is rejected for exceeding the plan's data quota
func NewLimitNotifier(log *logrus.Logger) UsageListener {
	if log == nil {
		log = logrus.New()
	}

	return func(s *Subscriber) {
		var limit float64
		if s.plan.HasDataLimit() {
			limit = *s.plan.DataQuota
		}
		log.WithFields(logrus.Fields{
			"subscriber": s.name,
			"phone":      s.phoneNumber,
			"plan":       s.PlanName(),
			"data_used":  s.dataUsed,
			"data_quota": limit,
		}).Warnf("%s has exceeded the internet limit", s.name)
	}
}
