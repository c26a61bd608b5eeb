package enums

// Availability describes whether a stock row can currently be reserved.
type Availability string

const (
	AvailabilityInStock    Availability = "InStock"
	AvailabilityOutOfStock Availability = "OutOfStock"
)

// AvailabilityFor derives availability from an on-hand quantity.
func AvailabilityFor(quantity int) Availability {
	if quantity > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}
