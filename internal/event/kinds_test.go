package event

import "testing"

func TestKind_Wiring(t *testing.T) {
	tests := []struct {
		kind    Kind
		channel string
		table   string
	}{
		{KindListed, "listed", "listed_items"},
		{KindPriceChanged, "price_changed", "price_changed_items"},
		{KindDelistedSold, "delisted_or_sold", "delisted_sold_items"},
	}

	for _, tt := range tests {
		if got := tt.kind.Channel(); got != tt.channel {
			t.Errorf("%s.Channel() = %q, want %q", tt.kind, got, tt.channel)
		}
		if got := tt.kind.Table(); got != tt.table {
			t.Errorf("%s.Table() = %q, want %q", tt.kind, got, tt.table)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %q, want %q", k, got, k)
		}
	}

	if _, err := ParseKind("orderbook"); err == nil {
		t.Error("ParseKind(\"orderbook\") expected error, got nil")
	}
	if _, err := ParseKind(""); err == nil {
		t.Error("ParseKind(\"\") expected error, got nil")
	}
}
