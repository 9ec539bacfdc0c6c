// Package pipeline drives the collect, deduplicate and create flow
// that turns activities into Azure DevOps work items.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"adofill/activity"
	"adofill/azdo"
	"adofill/config"
	"adofill/dedup"
	"adofill/enhance"
	"adofill/internal/classify"
	"adofill/internal/fingerprint"
	"adofill/source"
)

var (
	markCreated = color.New(color.FgGreen).SprintFunc()
	markSkipped = color.New(color.FgYellow).SprintFunc()
	markDryRun  = color.New(color.FgBlue).SprintFunc()
	markFailed  = color.New(color.FgRed).SprintFunc()
)

// RunOptions selects what a pipeline run covers.
type RunOptions struct {
	From   time.Time
	To     time.Time
	Source activity.SourceType // empty means all enabled sources
	DryRun bool
}

// Summary aggregates per-item outcomes of one run.
type Summary struct {
	Created     int
	Skipped     int
	Failed      int
	WouldCreate int
}

// Service wires sources, the dedup store and the work item client into
// one sequential pipeline.
type Service struct {
	cfg      config.Config
	client   azdo.Client
	store    *dedup.Store
	sources  []source.Source
	enhancer enhance.Enhancer
	out      io.Writer
}

func NewService(cfg config.Config, client azdo.Client, store *dedup.Store, sources []source.Source, enhancer enhance.Enhancer) *Service {
	if enhancer == nil {
		enhancer = enhance.Noop{}
	}
	return &Service{
		cfg:      cfg,
		client:   client,
		store:    store,
		sources:  sources,
		enhancer: enhancer,
		out:      os.Stdout,
	}
}

// SetOutput redirects run reporting, used by tests.
func (s *Service) SetOutput(w io.Writer) { s.out = w }

// Run collects activities for the requested range and processes them.
// A source that fails to collect is reported and excluded; the rest of
// the run proceeds.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	var collected []activity.Activity
	for _, src := range s.sources {
		if opts.Source != "" && src.Type() != opts.Source {
			continue
		}
		activities, err := src.Collect(ctx, opts.From, opts.To)
		if err != nil {
			fmt.Fprintf(s.out, "%s %s: collection failed: %v\n", markFailed("✗"), src.Name(), err)
			continue
		}
		fmt.Fprintf(s.out, "%s: %d activities\n", src.Name(), len(activities))
		collected = append(collected, activities...)
	}

	return s.ProcessActivities(ctx, collected, opts.DryRun)
}

// ProcessActivities deduplicates and creates work items for the given
// activities. Shared by live runs and batch imports.
func (s *Service) ProcessActivities(ctx context.Context, activities []activity.Activity, dryRun bool) (Summary, error) {
	toCreate, skipped, err := classify.Partition(activities, s.store)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{}
	for _, a := range skipped {
		fmt.Fprintf(s.out, "  %s %s (already processed)\n", markSkipped("⊘"), a.Title)
		summary.Skipped++
	}

	if s.cfg.AzureDevOps.MonthlyGrouping {
		if err := s.processGrouped(ctx, toCreate, dryRun, &summary); err != nil {
			return summary, err
		}
	} else {
		for _, a := range toCreate {
			if err := s.processOne(ctx, a, nil, dryRun, &summary); err != nil {
				return summary, err
			}
		}
	}

	s.printSummary(summary, dryRun)
	return summary, nil
}

// processOne creates a single work item. When parent is non-nil the
// item is linked under it before its fingerprint is recorded. Returned
// errors are store failures; remote failures are counted, not
// returned.
func (s *Service) processOne(ctx context.Context, a activity.Activity, parent *azdo.Created, dryRun bool, summary *Summary) error {
	day, err := a.Day()
	if err != nil {
		return err
	}
	digest := fingerprint.Activity(a.Source, a.Title, day)

	// Partitioning ran before any record was written, so re-check to
	// catch duplicates within the same run.
	if s.store.Exists(digest) {
		fmt.Fprintf(s.out, "  %s %s (already processed)\n", markSkipped("⊘"), a.Title)
		summary.Skipped++
		return nil
	}

	if dryRun {
		fmt.Fprintf(s.out, "  %s %s (%gh) - dry-run\n", markDryRun("○"), a.Title, a.CompletedWork)
		summary.WouldCreate++
		return nil
	}

	description := a.Description
	if s.cfg.AzureDevOps.EnhanceDescriptions {
		enhanced, err := s.enhancer.Enhance(ctx, a)
		if err != nil {
			fmt.Fprintf(s.out, "  %s %s: description enhancement failed, using raw text: %v\n", markSkipped("!"), a.Title, err)
		} else {
			description = enhanced
		}
	}

	// a.Project marks where the activity came from (commit repos may sit
	// in sibling projects) and rides along in exports; work items are
	// always created in the configured default project.
	created, err := s.client.CreateWorkItem(ctx, azdo.WorkItem{
		Type:          "Task",
		Title:         a.Title,
		Description:   description,
		AreaPath:      firstNonEmpty(a.AreaPath, s.cfg.AzureDevOps.DefaultArea),
		IterationPath: firstNonEmpty(a.IterationPath, s.cfg.AzureDevOps.DefaultIteration),
		AssignedTo:    s.cfg.AzureDevOps.AssignedTo,
		Tags:          a.Tags,
		CompletedWork: a.CompletedWork,
		Start:         a.Start,
		Finish:        a.End,
	})
	if err != nil {
		fmt.Fprintf(s.out, "  %s %s - %v\n", markFailed("✗"), a.Title, err)
		summary.Failed++
		return nil
	}

	if parent != nil {
		if err := s.client.LinkParent(ctx, created.ID, *parent); err != nil {
			fmt.Fprintf(s.out, "  %s %s - created as #%d but not linked: %v\n", markFailed("✗"), a.Title, created.ID, err)
			summary.Failed++
			return nil
		}
	}

	if err := s.store.Record(digest, created.ID, a.Source); err != nil {
		return fmt.Errorf("record %q: %w", a.Title, err)
	}

	s.applyDefaultState(ctx, created.ID, a.Title)
	fmt.Fprintf(s.out, "  %s %s (%gh) - Task #%d\n", markCreated("✓"), a.Title, a.CompletedWork, created.ID)
	summary.Created++
	return nil
}

// applyDefaultState moves a freshly created item out of the tracker's
// initial state. A failure leaves the item created with a warning.
func (s *Service) applyDefaultState(ctx context.Context, id int, title string) {
	state := s.cfg.AzureDevOps.DefaultState
	if state == "" {
		return
	}
	if err := s.client.UpdateState(ctx, id, state); err != nil {
		fmt.Fprintf(s.out, "  %s %s: created as #%d but state not set to %q: %v\n", markSkipped("!"), title, id, state, err)
	}
}

// Delete soft-deletes the given remote work items and removes their
// dedup records, freeing the fingerprints for recreation. Failures are
// independent per ID.
func (s *Service) Delete(ctx context.Context, ids []int) error {
	var firstErr error
	for _, id := range ids {
		if err := s.client.DeleteWorkItem(ctx, id); err != nil {
			fmt.Fprintf(s.out, "%s work item #%d: %v\n", markFailed("✗"), id, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed, err := s.store.RemoveByRemoteID(id)
		if err != nil {
			return fmt.Errorf("remove records for #%d: %w", id, err)
		}
		fmt.Fprintf(s.out, "%s work item #%d deleted (%d record(s) removed)\n", markCreated("✓"), id, removed)
	}
	return firstErr
}

func (s *Service) printSummary(summary Summary, dryRun bool) {
	if dryRun {
		fmt.Fprintf(s.out, "\nSummary: %d would be created, %d skipped\n", summary.WouldCreate, summary.Skipped)
		return
	}
	fmt.Fprintf(s.out, "\nSummary: %d created, %d skipped, %d failed\n", summary.Created, summary.Skipped, summary.Failed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
