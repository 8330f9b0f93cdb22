// Package catalog holds the fixed credit bundles and the simulated purchase flow.
package catalog

import "fmt"

type Package struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Credits      int     `json:"credits"`
	BonusCredits int     `json:"bonus_credits,omitempty"`
	PriceDisplay string  `json:"price"`
	PriceValue   float64 `json:"price_value"`
	Popular      bool    `json:"popular"`
}

// TotalCredits is what a purchase adds to the balance.
func (p Package) TotalCredits() int {
	return p.Credits + p.BonusCredits
}

// BonusLabel renders the bonus badge, empty when there is no bonus.
func (p Package) BonusLabel() string {
	if p.BonusCredits == 0 {
		return ""
	}
	return fmt.Sprintf("+%d Bonus", p.BonusCredits)
}

var packages = []Package{
	{ID: "starter", Name: "Starter", Description: "Perfect for trying out", Credits: 50, PriceDisplay: "$4.99", PriceValue: 4.99},
	{ID: "basic", Name: "Basic", Description: "For regular users", Credits: 150, BonusCredits: 20, PriceDisplay: "$9.99", PriceValue: 9.99},
	{ID: "pro", Name: "Pro", Description: "Best value for power users", Credits: 500, BonusCredits: 100, PriceDisplay: "$24.99", PriceValue: 24.99, Popular: true},
	{ID: "enterprise", Name: "Enterprise", Description: "For businesses & teams", Credits: 1500, BonusCredits: 400, PriceDisplay: "$59.99", PriceValue: 59.99},
}

// List returns the packages in display order.
func List() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

func Lookup(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}
