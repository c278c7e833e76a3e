package main

import (
	"context"
	"fmt"
	"upwatch/config"
	"upwatch/internals/modules/checker"
	"upwatch/internals/modules/monitor"
	"upwatch/pkg/db"
	"upwatch/pkg/httpclient"
	"upwatch/pkg/logger"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "run every managed item's check once and report, without alerting",
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	part, err := partitionFromFlags()
	if err != nil {
		return err
	}

	log := logger.Init(cfg)
	ctx := context.Background()

	dbPool, err := db.ConnectToDB(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	repo := monitor.NewRepository(dbPool)
	executor := checker.NewExecutor(cfg.Checker, httpclient.NewHttpClient(), log)

	ids, err := repo.ListEnabledIDs(ctx)
	if err != nil {
		return err
	}
	ids = part.Apply(ids)
	if limitFlag > 0 && len(ids) > limitFlag {
		ids = ids[:limitFlag]
	}

	var failed int
	for _, id := range ids {
		item, err := repo.GetItem(ctx, id)
		if err != nil {
			log.Error().Err(err).Int64("item_id", id).Msg("could not load item")
			failed++
			continue
		}
		if item == nil {
			continue
		}

		res := executor.Execute(ctx, item)
		if res.Success {
			log.Info().
				Int64("item_id", id).
				Str("name", item.Name).
				Dur("latency", res.Latency).
				Msg("check ok")
		} else {
			log.Warn().
				Int64("item_id", id).
				Str("name", item.Name).
				Str("message", res.Message).
				Msg("check failed")
			failed++
		}
	}

	log.Info().Int("checked", len(ids)).Int("failed", failed).Msg("test run complete")
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(ids))
	}
	return nil
}
