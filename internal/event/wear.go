package event

// Wear is the discrete condition band derived from an item's float value.
type Wear string

const (
	WearFactoryNew    Wear = "Factory New"
	WearMinimalWear   Wear = "Minimal Wear"
	WearFieldTested   Wear = "Field-Tested"
	WearWellWorn      Wear = "Well-Worn"
	WearBattleScarred Wear = "Battle-Scarred"
	WearUnknown       Wear = "Unknown"
)

// wearBands is the authoritative band table. Each band covers
// [previous upper bound, Upper); the final band is closed at 1.0.
// These cut points are the marketplace's established convention.
var wearBands = []struct {
	Upper float64
	Wear  Wear
}{
	{Upper: 0.07, Wear: WearFactoryNew},
	{Upper: 0.15, Wear: WearMinimalWear},
	{Upper: 0.38, Wear: WearFieldTested},
	{Upper: 0.45, Wear: WearWellWorn},
}

// WearFromFloat maps a float value to its wear band. A nil float or a value
// outside [0.0, 1.0] yields WearUnknown.
func WearFromFloat(f *float64) Wear {
	if f == nil {
		return WearUnknown
	}
	v := *f
	if v < 0.0 || v > 1.0 {
		return WearUnknown
	}
	for _, band := range wearBands {
		if v < band.Upper {
			return band.Wear
		}
	}
	return WearBattleScarred
}
