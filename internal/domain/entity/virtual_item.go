package entity

// Properties is an opaque JSON document scoped to a set of application ids.
// At most one entry of an item applies to a given app id.
type Properties struct {
	AppIDs []string `json:"appIds" firestore:"appIds"`
	JSON   string   `json:"json" firestore:"json"`
}

type PriceInfo struct {
	AppIDs   []string `json:"appIds,omitempty" firestore:"appIds"`
	Name     string   `json:"name" firestore:"name"`
	Quantity float64  `json:"quantity" firestore:"quantity"`
	Discount *float64 `json:"discount,omitempty" firestore:"discount,omitempty"`
	Group    string   `json:"group,omitempty" firestore:"group"`
}

type VirtualItem struct {
	ID          string       `json:"id" firestore:"id"`
	Name        string       `json:"name" firestore:"name"`
	Description string       `json:"description" firestore:"description"`
	CreatedAt   int64        `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   int64        `json:"updatedAt" firestore:"updatedAt"`
	CreatedBy   string       `json:"createdBy" firestore:"createdBy"`
	UpdatedBy   string       `json:"updatedBy" firestore:"updatedBy"`
	IsStackable bool         `json:"isStackable" firestore:"isStackable"`
	Tags        []string     `json:"tags" firestore:"tags"`
	AppIDs      []string     `json:"appIds" firestore:"appIds"`
	Childs      []string     `json:"childs" firestore:"childs"`
	Properties  []Properties `json:"properties" firestore:"properties"`
	Prices      []PriceInfo  `json:"prices" firestore:"prices"`
}

// Clone returns a deep copy so callers can hold snapshots that never alias each other.
func (v *VirtualItem) Clone() *VirtualItem {
	if v == nil {
		return nil
	}
	out := *v
	out.Tags = cloneStrings(v.Tags)
	out.AppIDs = cloneStrings(v.AppIDs)
	out.Childs = cloneStrings(v.Childs)
	if v.Properties != nil {
		out.Properties = make([]Properties, len(v.Properties))
		for i, p := range v.Properties {
			out.Properties[i] = Properties{AppIDs: cloneStrings(p.AppIDs), JSON: p.JSON}
		}
	}
	if v.Prices != nil {
		out.Prices = make([]PriceInfo, len(v.Prices))
		for i, p := range v.Prices {
			out.Prices[i] = p
			out.Prices[i].AppIDs = cloneStrings(p.AppIDs)
			if p.Discount != nil {
				d := *p.Discount
				out.Prices[i].Discount = &d
			}
		}
	}
	return &out
}

// PropertiesFor returns the properties document scoped to appID, if any.
func (v *VirtualItem) PropertiesFor(appID string) (string, bool) {
	for _, p := range v.Properties {
		for _, id := range p.AppIDs {
			if id == appID {
				return p.JSON, true
			}
		}
	}
	return "", false
}

func (v *VirtualItem) StackableLabel() string {
	if v.IsStackable {
		return "Item is stackable"
	}
	return "Item is not stackable"
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
