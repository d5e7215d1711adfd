package domain

import (
	"fmt"
	"sort"
)

// VerifyLedger checks that every entry's running sum follows from the previous one and
// that versions never repeat. The first entry must carry its own change as its sum.
// Entries may be passed in any order.
func VerifyLedger(entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	first := sorted[0]
	if first.PointsSum != first.PointsChange {
		return fmt.Errorf("user %d version %d: sum %d does not match opening change %d",
			first.UserID, first.Version, first.PointsSum, first.PointsChange)
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Version == prev.Version {
			return fmt.Errorf("user %d: version %d recorded twice", cur.UserID, cur.Version)
		}
		if cur.PointsSum != prev.PointsSum+cur.PointsChange {
			return fmt.Errorf("user %d version %d: sum %d, want %d",
				cur.UserID, cur.Version, cur.PointsSum, prev.PointsSum+cur.PointsChange)
		}
		if cur.PointsSum < 0 {
			return fmt.Errorf("user %d version %d: negative sum %d", cur.UserID, cur.Version, cur.PointsSum)
		}
	}
	return nil
}
