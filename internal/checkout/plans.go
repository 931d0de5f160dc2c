package checkout

import "errors"

var ErrUnknownPlan = errors.New("unknown plan")

// Plan is a subscription billing cadence.
type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// planDetails describes what Stripe bills. Amounts are CRC cents: the
// monthly plan is CRC 27,500 and the yearly plan CRC 330,000.
type planDetails struct {
	Name        string
	Description string
	Amount      int64
	Interval    string
}

var plans = map[Plan]planDetails{
	PlanMonthly: {
		Name:        "Forma - Plan Mensual",
		Description: "Suscripción mensual a Forma",
		Amount:      2750000,
		Interval:    "month",
	},
	PlanYearly: {
		Name:        "Forma - Plan Anual",
		Description: "Suscripción anual a Forma",
		Amount:      33000000,
		Interval:    "year",
	},
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if _, ok := plans[p]; !ok {
		return "", ErrUnknownPlan
	}
	return p, nil
}
