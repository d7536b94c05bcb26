// Command claims-seed creates the claim and policy tables and loads the
// sample claims, policy rules and member profiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	claimstore "github.com/sweetpotato0/ai-claims/claims/store"
	"github.com/sweetpotato0/ai-claims/config"
	memberstore "github.com/sweetpotato0/ai-claims/member/store"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	policystore "github.com/sweetpotato0/ai-claims/policy/store"
)

func main() {
	seedClaims := flag.Bool("claims", true, "create and seed the Postgres claim and policy tables")
	seedMembers := flag.Bool("members", true, "seed the MongoDB member profiles")
	flag.Parse()

	if err := run(context.Background(), *seedClaims, *seedMembers); err != nil {
		logging.Logger().Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, seedClaims, seedMembers bool) error {
	logger := logging.WithComponent("claims-seed")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if seedClaims {
		if err := config.ValidatePostgresConfig(cfg.Postgres); err != nil {
			return err
		}
		source, err := claimstore.NewPostgresSource(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer source.Close()

		if err := source.Migrate(ctx); err != nil {
			return err
		}
		sample := claimstore.SampleClaims()
		if err := source.Seed(ctx, sample); err != nil {
			return err
		}
		logger.Info("claims seeded", "count", len(sample), "database", cfg.Postgres.DBName)

		index := policystore.NewPostgresIndex(source.DB())
		if err := index.Migrate(ctx); err != nil {
			return err
		}
		rules := policystore.DefaultRules()
		if err := index.Upsert(ctx, rules...); err != nil {
			return err
		}
		logger.Info("policy rules seeded", "count", len(rules))
	}

	if seedMembers {
		if err := config.ValidateMongoDBConfig(cfg.Mongo); err != nil {
			return err
		}
		store, err := memberstore.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		profiles := memberstore.SampleProfiles()
		for i := range profiles {
			if err := store.Upsert(ctx, &profiles[i]); err != nil {
				return fmt.Errorf("upsert member %s: %w", profiles[i].ID, err)
			}
		}
		logger.Info("member profiles seeded", "count", len(profiles), "collection", cfg.Mongo.Collection)
	}
	return nil
}
