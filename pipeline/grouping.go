package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"adofill/activity"
	"adofill/azdo"
	"adofill/internal/fingerprint"
)

// portugueseMonths matches the month names used in the monthly parent
// titles.
var portugueseMonths = map[time.Month]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

type monthKey struct {
	year  int
	month time.Month
}

// GroupTitle builds the display title of a monthly parent item.
func GroupTitle(year int, month time.Month, qualifier string) string {
	title := fmt.Sprintf("Atividades %s %d", portugueseMonths[month], year)
	if qualifier != "" {
		title += " - " + qualifier
	}
	return title
}

// processGrouped partitions activities by month and creates each one
// under a reused monthly parent. All activities were collected before
// this point, so every month's group is complete.
func (s *Service) processGrouped(ctx context.Context, activities []activity.Activity, dryRun bool, summary *Summary) error {
	byMonth := make(map[monthKey][]activity.Activity)
	for _, a := range activities {
		day, err := a.Day()
		if err != nil {
			return err
		}
		key := monthKey{year: day.Year(), month: day.Month()}
		byMonth[key] = append(byMonth[key], a)
	}

	keys := make([]monthKey, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	for _, key := range keys {
		parent, err := s.resolveParent(ctx, key, dryRun)
		if err != nil {
			// The whole month is unprocessable without its parent;
			// later months still get their chance.
			fmt.Fprintf(s.out, "%s %s - %v\n", markFailed("✗"), GroupTitle(key.year, key.month, s.cfg.AzureDevOps.GroupingLabel), err)
			summary.Failed += len(byMonth[key])
			continue
		}
		for _, a := range byMonth[key] {
			if err := s.processOne(ctx, a, parent, dryRun, summary); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveParent returns the month's parent item, creating and
// recording it on first use. In dry-run mode an unknown parent is
// reported but not created; children are then previewed unlinked.
func (s *Service) resolveParent(ctx context.Context, key monthKey, dryRun bool) (*azdo.Created, error) {
	qualifier := s.cfg.AzureDevOps.GroupingLabel
	digest := fingerprint.Group(key.year, key.month, qualifier)
	title := GroupTitle(key.year, key.month, qualifier)

	if record, ok := s.store.GetParent(digest); ok {
		fmt.Fprintf(s.out, "%s [US] %s - #%d (reused)\n", markSkipped("⊘"), title, record.RemoteID)
		return s.parentRef(record.RemoteID), nil
	}

	if dryRun {
		fmt.Fprintf(s.out, "%s [US] %s - dry-run\n", markDryRun("○"), title)
		return nil, nil
	}

	created, err := s.client.CreateWorkItem(ctx, azdo.WorkItem{
		Type:          "User Story",
		Title:         title,
		AreaPath:      s.cfg.AzureDevOps.DefaultArea,
		IterationPath: s.cfg.AzureDevOps.DefaultIteration,
		AssignedTo:    s.cfg.AzureDevOps.AssignedTo,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.RecordParent(digest, created.ID); err != nil {
		return nil, fmt.Errorf("record parent: %w", err)
	}
	s.applyDefaultState(ctx, created.ID, title)
	fmt.Fprintf(s.out, "%s [US] %s - #%d\n", markCreated("✓"), title, created.ID)
	return &created, nil
}

// parentRef rebuilds the work item URL used for hierarchy links from a
// stored remote ID.
func (s *Service) parentRef(id int) *azdo.Created {
	return &azdo.Created{
		ID:  id,
		URL: fmt.Sprintf("%s/%s/_apis/wit/workItems/%d", s.cfg.AzureDevOps.BaseURL, s.cfg.AzureDevOps.Organization, id),
	}
}
