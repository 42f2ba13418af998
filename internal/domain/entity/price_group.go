package entity

// PriceGroup is one purchase control: either a single unlabelled offer or every offer sharing a group label.
type PriceGroup struct {
	Group  string      `json:"group,omitempty"`
	Offers []PriceInfo `json:"offers"`
}

func (g PriceGroup) CurrencyNames() []string {
	names := make([]string, len(g.Offers))
	for i, offer := range g.Offers {
		names[i] = offer.Name
	}
	return names
}

// GroupPrices partitions prices by group label in a single pass. Groups appear in the order of
// their first offer and keep the original order of their members.
func GroupPrices(prices []PriceInfo) []PriceGroup {
	groups := make([]PriceGroup, 0, len(prices))
	byLabel := make(map[string]int)

	for _, price := range prices {
		if price.Group == "" {
			groups = append(groups, PriceGroup{Offers: []PriceInfo{price}})
			continue
		}
		if idx, ok := byLabel[price.Group]; ok {
			groups[idx].Offers = append(groups[idx].Offers, price)
			continue
		}
		byLabel[price.Group] = len(groups)
		groups = append(groups, PriceGroup{Group: price.Group, Offers: []PriceInfo{price}})
	}

	return groups
}
