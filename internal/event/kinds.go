package event

import "fmt"

// Kind identifies one of the three disjoint event categories.
type Kind string

const (
	KindListed       Kind = "listed"
	KindPriceChanged Kind = "price_changed"
	KindDelistedSold Kind = "delisted_sold"
)

// variant holds the kind-specific wiring: the subscription channel on the
// marketplace stream and the table the events persist into.
type variant struct {
	channel string
	table   string
}

var variants = map[Kind]variant{
	KindListed:       {channel: "listed", table: "listed_items"},
	KindPriceChanged: {channel: "price_changed", table: "price_changed_items"},
	KindDelistedSold: {channel: "delisted_or_sold", table: "delisted_sold_items"},
}

// ParseKind converts a string (e.g. from a -kind flag) into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := variants[k]; !ok {
		return "", fmt.Errorf("unknown event kind %q (want listed, price_changed, or delisted_sold)", s)
	}
	return k, nil
}

// Channel returns the marketplace stream channel for this kind.
func (k Kind) Channel() string {
	return variants[k].channel
}

// Table returns the persisted table name for this kind.
func (k Kind) Table() string {
	return variants[k].table
}

// Kinds returns all event kinds in a fixed order.
func Kinds() []Kind {
	return []Kind{KindListed, KindPriceChanged, KindDelistedSold}
}

func (k Kind) String() string {
	return string(k)
}
