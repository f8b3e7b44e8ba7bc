package level

import (
	"fmt"
	"time"
)

// Spec configures one generated level
type Spec struct {
	Name                  string  `toml:"name"`
	PlateCount            int     `toml:"plate_count"`
	TypeCount             int     `toml:"type_count"`
	TotalItemCount        int     `toml:"total_item_count"`
	MinLayersPerPlate     int     `toml:"min_layers_per_plate"`
	MaxLayersPerPlate     int     `toml:"max_layers_per_plate"`
	TimeLimitSeconds      float64 `toml:"time_limit_seconds"`
	GuaranteedMergeSets   int     `toml:"guaranteed_merge_sets"`
	LockedPlateCount      int     `toml:"locked_plate_count"`
	MergeUnlockCount      int     `toml:"merge_unlock_count"`
	LockedItemCount       int     `toml:"locked_item_count"`
	ConcentratedTypeCount int     `toml:"concentrated_type_count"`
}

// DefaultSpec returns the stock level: 9 plates, 4 types, 36 items
func DefaultSpec() Spec {
	return Spec{
		Name:                "classic",
		PlateCount:          9,
		TypeCount:           4,
		TotalItemCount:      36,
		MinLayersPerPlate:   1,
		MaxLayersPerPlate:   3,
		TimeLimitSeconds:    300,
		GuaranteedMergeSets: 2,
	}
}

// TimeLimit returns the limit as a duration, zero means untimed
func (s Spec) TimeLimit() time.Duration {
	if s.TimeLimitSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeLimitSeconds * float64(time.Second))
}

// clamp fixes values that are infeasible on their own, catalog size bounds the type count
// Counts that depend on the generated layout are clamped later by the generator
func (s Spec) clamp(available int, warnf func(format string, args ...any)) Spec {
	atLeast := func(field string, v *int, min int) {
		if *v < min {
			warnf("%s %d below %d, using %d", field, *v, min, min)
			*v = min
		}
	}

	atLeast("plate_count", &s.PlateCount, 1)
	atLeast("type_count", &s.TypeCount, 1)
	atLeast("total_item_count", &s.TotalItemCount, 0)
	atLeast("min_layers_per_plate", &s.MinLayersPerPlate, 0)
	atLeast("guaranteed_merge_sets", &s.GuaranteedMergeSets, 0)
	atLeast("locked_plate_count", &s.LockedPlateCount, 0)
	atLeast("merge_unlock_count", &s.MergeUnlockCount, 0)
	atLeast("locked_item_count", &s.LockedItemCount, 0)
	atLeast("concentrated_type_count", &s.ConcentratedTypeCount, 0)

	if s.MaxLayersPerPlate < s.MinLayersPerPlate {
		warnf("max_layers_per_plate %d below min %d, using %d", s.MaxLayersPerPlate, s.MinLayersPerPlate, s.MinLayersPerPlate)
		s.MaxLayersPerPlate = s.MinLayersPerPlate
	}
	if s.TypeCount > available {
		warnf("degraded: catalog has %d types, %d requested", available, s.TypeCount)
		s.TypeCount = available
	}
	if r := s.TotalItemCount % 3; r != 0 {
		warnf("total_item_count %d not a multiple of 3, using %d", s.TotalItemCount, s.TotalItemCount-r)
		s.TotalItemCount -= r
	}
	if s.ConcentratedTypeCount > s.TypeCount {
		warnf("concentrated_type_count %d exceeds type count, using %d", s.ConcentratedTypeCount, s.TypeCount)
		s.ConcentratedTypeCount = s.TypeCount
	}
	if s.MergeUnlockCount > s.LockedPlateCount {
		warnf("merge_unlock_count %d exceeds locked_plate_count, using %d", s.MergeUnlockCount, s.LockedPlateCount)
		s.MergeUnlockCount = s.LockedPlateCount
	}
	return s
}

func (s Spec) String() string {
	name := s.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s: %d plates, %d types, %d items, layers %d-%d, %d sets, %d locked plates (%d by merge), %d locked items, %d concentrated",
		name, s.PlateCount, s.TypeCount, s.TotalItemCount, s.MinLayersPerPlate, s.MaxLayersPerPlate,
		s.GuaranteedMergeSets, s.LockedPlateCount, s.MergeUnlockCount, s.LockedItemCount, s.ConcentratedTypeCount)
}
