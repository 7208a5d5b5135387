package pricing

// Group identifies one of the two driver cost groups.
type Group string

const (
	GroupProvincial Group = "provincial"
	GroupNational   Group = "national"
)

// ItemKey identifies a driver line item within its group.
type ItemKey string

const (
	ItemWorkday       ItemKey = "workday"
	ItemPerDiem       ItemKey = "perDiem"
	ItemPickupDropoff ItemKey = "pickupDropoff"
	ItemOvertimeHour  ItemKey = "overtimeHour"
	ItemSleeperBerth  ItemKey = "sleeperBerth"
	ItemBreakfast     ItemKey = "breakfast"
	ItemLunch         ItemKey = "lunch"
	ItemSnack         ItemKey = "snack"
	ItemDinner        ItemKey = "dinner"
)

type itemDef struct {
	key   ItemKey
	label string
}

var (
	provincialDefs = []itemDef{
		{ItemWorkday, "JORNADA CHOFER"},
		{ItemPerDiem, "VIATICO"},
		{ItemPickupDropoff, "TOME Y DEJE"},
		{ItemOvertimeHour, "H. EXTRA"},
		{ItemSleeperBerth, "CAMA"},
	}
	nationalDefs = []itemDef{
		{ItemBreakfast, "DESAYUNO"},
		{ItemLunch, "ALMUERZO"},
		{ItemSnack, "MERIENDA"},
		{ItemDinner, "CENA"},
		{ItemSleeperBerth, "CAMA"},
	}
)

// Keys lists the item keys of the group in display order.
func (g Group) Keys() []ItemKey {
	var defs []itemDef
	switch g {
	case GroupProvincial:
		defs = provincialDefs
	case GroupNational:
		defs = nationalDefs
	}
	keys := make([]ItemKey, 0, len(defs))
	for _, s := range defs {
		keys = append(keys, s.key)
	}
	return keys
}

// Has reports whether key belongs to the group.
func (g Group) Has(key ItemKey) bool {
	for _, k := range g.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// DriverItem is a quantity x unit price line item of driver costs.
type DriverItem struct {
	Key       ItemKey `json:"key"`
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Cost is the contribution of the item for a single unit.
func (i DriverItem) Cost() float64 {
	return i.Quantity * i.UnitPrice
}

// UnitPrices maps item keys to unit prices for one group.
type UnitPrices map[ItemKey]float64

// DriverPrices is the per-diem price list for both groups.
type DriverPrices struct {
	Provincial UnitPrices `json:"provincial" yaml:"provincial"`
	National   UnitPrices `json:"national" yaml:"national"`
}

// Clone returns an independent copy of the price list.
func (p DriverPrices) Clone() DriverPrices {
	return DriverPrices{
		Provincial: cloneUnitPrices(p.Provincial),
		National:   cloneUnitPrices(p.National),
	}
}

func cloneUnitPrices(src UnitPrices) UnitPrices {
	out := make(UnitPrices, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func newItem(def itemDef, prices UnitPrices) DriverItem {
	return DriverItem{Key: def.key, Label: def.label, UnitPrice: prices[def.key]}
}

// ProvincialItems are the driver costs of a trip within the province.
type ProvincialItems struct {
	Workday       DriverItem `json:"workday"`
	PerDiem       DriverItem `json:"perDiem"`
	PickupDropoff DriverItem `json:"pickupDropoff"`
	OvertimeHour  DriverItem `json:"overtimeHour"`
	SleeperBerth  DriverItem `json:"sleeperBerth"`
}

// NewProvincialItems builds the group with zero quantities and the given prices.
func NewProvincialItems(prices UnitPrices) ProvincialItems {
	return ProvincialItems{
		Workday:       newItem(provincialDefs[0], prices),
		PerDiem:       newItem(provincialDefs[1], prices),
		PickupDropoff: newItem(provincialDefs[2], prices),
		OvertimeHour:  newItem(provincialDefs[3], prices),
		SleeperBerth:  newItem(provincialDefs[4], prices),
	}
}

// Items returns the line items in display order.
func (p ProvincialItems) Items() []DriverItem {
	return []DriverItem{p.Workday, p.PerDiem, p.PickupDropoff, p.OvertimeHour, p.SleeperBerth}
}

// Item returns a pointer to the line item stored under key.
func (p *ProvincialItems) Item(key ItemKey) (*DriverItem, bool) {
	switch key {
	case ItemWorkday:
		return &p.Workday, true
	case ItemPerDiem:
		return &p.PerDiem, true
	case ItemPickupDropoff:
		return &p.PickupDropoff, true
	case ItemOvertimeHour:
		return &p.OvertimeHour, true
	case ItemSleeperBerth:
		return &p.SleeperBerth, true
	}
	return nil, false
}

// CostPerUnit sums the item costs for a single vehicle.
func (p ProvincialItems) CostPerUnit() float64 {
	return sumCosts(p.Items())
}

// NationalItems are the driver costs of an interprovincial trip.
type NationalItems struct {
	Breakfast    DriverItem `json:"breakfast"`
	Lunch        DriverItem `json:"lunch"`
	Snack        DriverItem `json:"snack"`
	Dinner       DriverItem `json:"dinner"`
	SleeperBerth DriverItem `json:"sleeperBerth"`

	// LegacyPerDiem is carried for older clients and never priced.
	LegacyPerDiem float64 `json:"legacyPerDiem"`
}

// NewNationalItems builds the group with zero quantities and the given prices.
func NewNationalItems(prices UnitPrices) NationalItems {
	return NationalItems{
		Breakfast:    newItem(nationalDefs[0], prices),
		Lunch:        newItem(nationalDefs[1], prices),
		Snack:        newItem(nationalDefs[2], prices),
		Dinner:       newItem(nationalDefs[3], prices),
		SleeperBerth: newItem(nationalDefs[4], prices),
	}
}

// Items returns the line items in display order.
func (n NationalItems) Items() []DriverItem {
	return []DriverItem{n.Breakfast, n.Lunch, n.Snack, n.Dinner, n.SleeperBerth}
}

// Item returns a pointer to the line item stored under key.
func (n *NationalItems) Item(key ItemKey) (*DriverItem, bool) {
	switch key {
	case ItemBreakfast:
		return &n.Breakfast, true
	case ItemLunch:
		return &n.Lunch, true
	case ItemSnack:
		return &n.Snack, true
	case ItemDinner:
		return &n.Dinner, true
	case ItemSleeperBerth:
		return &n.SleeperBerth, true
	}
	return nil, false
}

// CostPerUnit sums the item costs for a single vehicle. LegacyPerDiem is excluded.
func (n NationalItems) CostPerUnit() float64 {
	return sumCosts(n.Items())
}

func sumCosts(items []DriverItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Cost()
	}
	return total
}
