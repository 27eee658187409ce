// Package main loads a YAML fixture of users, elections and ballots
// into a running voting-service storage backend — intended for local
// development and integration-test setup, not production seeding.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"kv-shepherd.io/shepherd/internal/app"
	"kv-shepherd.io/shepherd/internal/config"
	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/pkg/logger"
	"kv-shepherd.io/shepherd/internal/service"
)

// fixture is the on-disk shape of a seed file: users are registered in
// list order (the first becomes OWNER per spec.md §4.2), elections are
// created by the named owner and optionally launched, and ballots are
// cast by the named voter.
type fixture struct {
	Users []struct {
		Name     string      `yaml:"name"`
		Email    string      `yaml:"email"`
		Password string      `yaml:"password"`
		Role     domain.Role `yaml:"role,omitempty"`
	} `yaml:"users"`

	Elections []struct {
		Name       string   `yaml:"name"`
		Owner      string   `yaml:"owner"`
		Candidates []string `yaml:"candidates"`
		Voters     []string `yaml:"voters"`
		Launch     bool     `yaml:"launch"`
		AllowEdit  bool     `yaml:"allowEdit"`
	} `yaml:"elections"`

	Ballots []struct {
		Election string `yaml:"election"`
		Voter    string `yaml:"voter"`
		Rankings []struct {
			Candidate string `yaml:"candidate"`
			Rank      int    `yaml:"rank"`
		} `yaml:"rankings"`
	} `yaml:"ballots"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Seed.FixturePath == "" {
		return fmt.Errorf("seed.fixture_path is not set")
	}

	raw, err := os.ReadFile(cfg.Seed.FixturePath)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", cfg.Seed.FixturePath, err)
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	ctx := context.Background()
	application, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer application.Shutdown()

	if err := applyFixture(ctx, application.Service, fx); err != nil {
		return fmt.Errorf("apply fixture: %w", err)
	}

	logger.Info("seed completed",
		zap.Int("users", len(fx.Users)),
		zap.Int("elections", len(fx.Elections)),
		zap.Int("ballots", len(fx.Ballots)),
	)
	return nil
}

func applyFixture(ctx context.Context, svc *service.Service, fx fixture) error {
	var owner string
	for _, u := range fx.Users {
		if _, _, err := svc.Register(ctx, u.Name, u.Email, u.Password); err != nil {
			return fmt.Errorf("register %s: %w", u.Name, err)
		}
		if owner == "" {
			owner = u.Name
		}
		if u.Role != "" && u.Role != domain.RoleOwner {
			if err := svc.SetRole(ctx, owner, u.Name, u.Role); err != nil {
				return fmt.Errorf("set role for %s: %w", u.Name, err)
			}
		}
	}

	for _, e := range fx.Elections {
		if err := svc.CreateElection(ctx, e.Owner, e.Name); err != nil {
			return fmt.Errorf("create election %s: %w", e.Name, err)
		}
		if len(e.Candidates) > 0 {
			if err := svc.AddCandidates(ctx, e.Owner, e.Name, e.Candidates); err != nil {
				return fmt.Errorf("add candidates to %s: %w", e.Name, err)
			}
		}
		if len(e.Voters) > 0 {
			if err := svc.AddVoters(ctx, e.Owner, e.Name, e.Voters); err != nil {
				return fmt.Errorf("add voters to %s: %w", e.Name, err)
			}
		}
		if e.Launch {
			if err := svc.LaunchElection(ctx, e.Owner, e.Name, e.AllowEdit); err != nil {
				return fmt.Errorf("launch election %s: %w", e.Name, err)
			}
		}
	}

	for _, b := range fx.Ballots {
		rankings := make([]domain.Ranking, len(b.Rankings))
		for i, r := range b.Rankings {
			rankings[i] = domain.Ranking{CandidateName: r.Candidate, Rank: r.Rank}
		}
		if err := svc.CastBallot(ctx, b.Voter, b.Election, rankings); err != nil {
			return fmt.Errorf("cast ballot for %s in %s: %w", b.Voter, b.Election, err)
		}
	}

	return nil
}
