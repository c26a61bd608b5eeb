package enums

import "testing"

func TestParseSortOrder(t *testing.T) {
	cases := map[string]SortOrder{
		"":             SortOrderHighestStock,
		"nearest":      SortOrderNearest,
		"HighestStock": SortOrderHighestStock,
	}
	for input, want := range cases {
		got, err := ParseSortOrder(input)
		if err != nil {
			t.Fatalf("ParseSortOrder(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseSortOrder(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := ParseSortOrder("cheapest"); err == nil {
		t.Fatal("expected unknown sort order to fail")
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	if ReservationStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !ReservationStatusApproved.IsTerminal() || !ReservationStatusRejected.IsTerminal() {
		t.Fatal("approved and rejected must be terminal")
	}
	if _, err := ParseReservationStatus("Cancelled"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestAvailabilityFor(t *testing.T) {
	if AvailabilityFor(0) != AvailabilityOutOfStock {
		t.Fatal("zero quantity must be out of stock")
	}
	if AvailabilityFor(3) != AvailabilityInStock {
		t.Fatal("positive quantity must be in stock")
	}
}

func TestParseUserRoleIgnoresCase(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin role, got %s err=%v", role, err)
	}
}
