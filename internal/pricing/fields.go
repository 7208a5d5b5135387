package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Field identifies an editable numeric field of a TripInput.
//
// Scalar fields use their JSON name. Driver item fields use the
// "<group>.<item>.<attr>" form, e.g. "provincial.workday.quantity".
type Field string

const (
	FieldUnits           Field = "units"
	FieldProductiveKm    Field = "productiveKm"
	FieldDestinationKm   Field = "destinationKm"
	FieldUnproductiveKm  Field = "unproductiveKm"
	FieldPassengers      Field = "passengers"
	FieldDiscountPercent Field = "discountPercent"
)

// ItemAttr names the editable attribute of a driver item.
type ItemAttr string

const (
	AttrQuantity  ItemAttr = "quantity"
	AttrUnitPrice ItemAttr = "unitPrice"
)

type fieldKind int

const (
	kindCount fieldKind = iota + 1
	kindDistance
	kindQuantity
	kindPrice
	kindPercent
)

var scalarKinds = map[Field]fieldKind{
	FieldUnits:           kindCount,
	FieldProductiveKm:    kindDistance,
	FieldDestinationKm:   kindDistance,
	FieldUnproductiveKm:  kindDistance,
	FieldPassengers:      kindCount,
	FieldDiscountPercent: kindPercent,
}

// ItemField builds the identity of a driver item attribute.
func ItemField(group Group, key ItemKey, attr ItemAttr) Field {
	return Field(fmt.Sprintf("%s.%s.%s", group, key, attr))
}

// ItemParts splits a driver item field into its components.
func (f Field) ItemParts() (Group, ItemKey, ItemAttr, bool) {
	parts := strings.Split(string(f), ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	group, key, attr := Group(parts[0]), ItemKey(parts[1]), ItemAttr(parts[2])
	if group != GroupProvincial && group != GroupNational {
		return "", "", "", false
	}
	if !group.Has(key) {
		return "", "", "", false
	}
	if attr != AttrQuantity && attr != AttrUnitPrice {
		return "", "", "", false
	}
	return group, key, attr, true
}

func (f Field) kind() (fieldKind, bool) {
	if k, ok := scalarKinds[f]; ok {
		return k, true
	}
	_, _, attr, ok := f.ItemParts()
	if !ok {
		return 0, false
	}
	if attr == AttrUnitPrice {
		return kindPrice, true
	}
	return kindQuantity, true
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	_, ok := f.kind()
	return ok
}

// ParseField resolves a field identity from its wire name.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Fields lists every editable field: scalars first, then driver items by group.
func Fields() []Field {
	fields := []Field{
		FieldUnits, FieldProductiveKm, FieldDestinationKm,
		FieldUnproductiveKm, FieldPassengers, FieldDiscountPercent,
	}
	for _, g := range []Group{GroupProvincial, GroupNational} {
		for _, k := range g.Keys() {
			fields = append(fields, ItemField(g, k, AttrQuantity), ItemField(g, k, AttrUnitPrice))
		}
	}
	return fields
}

// ValidateField checks a candidate value for a field. Counts, quantities,
// distances and prices must not be negative; counts must be whole numbers no
// larger than math.MaxInt32 and the discount percentage is bounded to [0, 100].
func ValidateField(field Field, value float64) error {
	kind, ok := field.kind()
	if !ok {
		return &FieldError{Field: field, Value: value, Err: ErrUnknownField}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &FieldError{Field: field, Value: value, Err: ErrNotFinite}
	}
	if value < 0 {
		return &FieldError{Field: field, Value: value, Err: ErrNegativeValue}
	}

	switch kind {
	case kindCount:
		if value != math.Trunc(value) {
			return &FieldError{Field: field, Value: value, Err: ErrNotInteger}
		}
		if value > math.MaxInt32 {
			return &FieldError{Field: field, Value: value, Err: ErrOutOfRange}
		}
	case kindPercent:
		if value > MaxDiscountPercent {
			return &FieldError{Field: field, Value: value, Err: ErrOutOfRange}
		}
	}
	return nil
}

// Apply validates value and commits it to field. On error t is left unchanged.
func (t *TripInput) Apply(field Field, value float64) error {
	if err := ValidateField(field, value); err != nil {
		return err
	}

	switch field {
	case FieldUnits:
		t.Units = int(value)
	case FieldProductiveKm:
		t.ProductiveKm = value
	case FieldDestinationKm:
		t.DestinationKm = value
	case FieldUnproductiveKm:
		t.UnproductiveKm = value
	case FieldPassengers:
		t.Passengers = int(value)
	case FieldDiscountPercent:
		t.DiscountPercent = value
	default:
		item, attr, err := t.item(field)
		if err != nil {
			return err
		}
		if attr == AttrUnitPrice {
			item.UnitPrice = value
		} else {
			item.Quantity = value
		}
	}
	return nil
}

// Value returns the committed value of field.
func (t TripInput) Value(field Field) (float64, error) {
	switch field {
	case FieldUnits:
		return float64(t.Units), nil
	case FieldProductiveKm:
		return t.ProductiveKm, nil
	case FieldDestinationKm:
		return t.DestinationKm, nil
	case FieldUnproductiveKm:
		return t.UnproductiveKm, nil
	case FieldPassengers:
		return float64(t.Passengers), nil
	case FieldDiscountPercent:
		return t.DiscountPercent, nil
	}

	item, attr, err := t.item(field)
	if err != nil {
		return 0, err
	}
	if attr == AttrUnitPrice {
		return item.UnitPrice, nil
	}
	return item.Quantity, nil
}

func (t *TripInput) item(field Field) (*DriverItem, ItemAttr, error) {
	group, key, attr, ok := field.ItemParts()
	if !ok {
		return nil, "", &FieldError{Field: field, Err: ErrUnknownField}
	}

	var (
		item  *DriverItem
		found bool
	)
	if group == GroupProvincial {
		item, found = t.Provincial.Item(key)
	} else {
		item, found = t.National.Item(key)
	}
	if !found {
		return nil, "", &FieldError{Field: field, Err: ErrUnknownField}
	}
	return item, attr, nil
}
