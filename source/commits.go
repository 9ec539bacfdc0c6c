package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adofill/activity"
	"adofill/azdo"
	"adofill/config"
)

// commitHours is the fixed completed work credited per commit.
const commitHours = 0.5

// CommitSource turns the author's Azure DevOps commits into
// activities, one per commit.
type CommitSource struct {
	cfg         config.CommitsConfig
	client      azdo.Client
	authorEmail string
}

func NewCommitSource(cfg config.CommitsConfig, client azdo.Client, authorEmail string) *CommitSource {
	return &CommitSource{cfg: cfg, client: client, authorEmail: authorEmail}
}

func (s *CommitSource) Type() activity.SourceType { return activity.SourceCommit }

func (s *CommitSource) Name() string { return "Commits" }

func (s *CommitSource) Collect(ctx context.Context, from, to time.Time) ([]activity.Activity, error) {
	var activities []activity.Activity
	for _, repo := range s.cfg.Repositories {
		commits, err := s.client.Commits(ctx, repo.Project, repo.Name, s.authorEmail, from, to)
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", repo.Name, err)
		}
		for _, c := range commits {
			activities = append(activities, commitActivity(c, repo))
		}
	}
	return activities, nil
}

func commitActivity(c azdo.Commit, repo config.RepositoryConfig) activity.Activity {
	firstLine := strings.TrimSpace(strings.SplitN(c.Comment, "\n", 2)[0])
	title := fmt.Sprintf("[%s] %s", repo.Name, firstLine)
	a := activity.NewActivity(activity.SourceCommit, title, c.AuthorDate, c.AuthorDate, commitHours)
	a.Description = fmt.Sprintf("Commit pushed to repository %s.\nHash: %s\nMessage: %s", repo.Name, c.ID, firstLine)
	a.Project = repo.Project
	a.AreaPath = repo.AreaPath
	a.IterationPath = repo.IterationPath
	a.Tags = append([]string(nil), repo.Tags...)
	return a
}

func (s *CommitSource) Verify(ctx context.Context) error {
	if len(s.cfg.Repositories) == 0 {
		return fmt.Errorf("no repositories configured")
	}
	return s.client.TestConnection(ctx)
}
