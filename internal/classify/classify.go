package classify

import (
	"sort"

	"adofill/activity"
	"adofill/internal/fingerprint"
)

// Store is the dedup lookup Partition needs.
type Store interface {
	Exists(digest string) bool
}

// Partition splits activities into new candidates and already-recorded
// ones, checking each fingerprint against the store. Output order is
// deterministic: by date, then source, then start time, then title.
func Partition(activities []activity.Activity, store Store) (toCreate, skipped []activity.Activity, err error) {
	sorted := make([]activity.Activity, len(activities))
	copy(sorted, activities)
	SortActivities(sorted)

	toCreate = make([]activity.Activity, 0, len(sorted))
	skipped = make([]activity.Activity, 0)

	for _, a := range sorted {
		day, err := a.Day()
		if err != nil {
			return nil, nil, err
		}
		digest := fingerprint.Activity(a.Source, a.Title, day)
		if store.Exists(digest) {
			skipped = append(skipped, a)
			continue
		}
		toCreate = append(toCreate, a)
	}
	return toCreate, skipped, nil
}

// SortActivities orders activities by date, source, start time and
// title.
func SortActivities(activities []activity.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Title < b.Title
	})
}
