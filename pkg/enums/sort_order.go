package enums

import (
	"fmt"
	"strings"
)

// SortOrder selects how stock search results are ordered.
type SortOrder string

const (
	SortOrderHighestStock SortOrder = "HighestStock"
	SortOrderNearest      SortOrder = "Nearest"
)

var validSortOrders = []SortOrder{
	SortOrderHighestStock,
	SortOrderNearest,
}

// String implements fmt.Stringer.
func (s SortOrder) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortOrder.
func (s SortOrder) IsValid() bool {
	for _, candidate := range validSortOrders {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOrder converts raw input into a SortOrder. Empty input defaults to
// HighestStock.
func ParseSortOrder(value string) (SortOrder, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SortOrderHighestStock, nil
	}
	for _, candidate := range validSortOrders {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
