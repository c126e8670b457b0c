// main.go
//
// Document database setup, seed, and analytics kit for the learning platform schemas
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lp-docdb.
// lp-docdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lp-docdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lp-docdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/localnerve/lp-docdb/internal/config"
	"github.com/localnerve/lp-docdb/internal/database"
	"github.com/localnerve/lp-docdb/internal/schema"
	"github.com/localnerve/lp-docdb/internal/seed"
)

const usage = `
Manage the learning-platform document databases.

Usage:

lpdb [-h] [-f ENV_FILE_PATH] [-schema learning|prefs|all] STAGE

STAGE:
  setup      create collections with validators and indexes (idempotent)
  seed       load the deterministic demo dataset (idempotent)
  demo       run the query demonstrations against the seeded data
  pipelines  run the aggregation reports (engagement, timeline)
  drop       drop the configured database(s) - IRREVERSIBLE

ENV_FILE_PATH: path to the .env file

example
  lpdb -f /path/to/something/.env -schema learning setup
`

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var schemaName string
	flag.StringVar(&schemaName, "schema", "all", "schema to operate on: learning, prefs, or all")
	flag.Parse()

	if showHelp {
		fmt.Print(usage)
		return
	}

	stage := flag.Arg(0)
	if stage == "" {
		fmt.Print(usage)
		os.Exit(2)
	}
	if schemaName != "learning" && schemaName != "prefs" && schemaName != "all" {
		log.Fatalf("Unknown schema %q, expected learning, prefs, or all", schemaName)
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	if err := runStage(ctx, cfg, stage, schemaName); err != nil {
		log.Fatalf("Stage %s failed: %v", stage, err)
	}
}

func runStage(ctx context.Context, cfg *config.Config, stage, schemaName string) error {
	switch stage {
	case "setup":
		return forEachSchema(ctx, cfg, schemaName, runSetup)
	case "seed":
		return forEachSchema(ctx, cfg, schemaName, runSeed)
	case "demo":
		return forEachSchema(ctx, cfg, schemaName, runDemo)
	case "pipelines":
		return forEachSchema(ctx, cfg, schemaName, runPipelines)
	case "drop":
		return forEachSchema(ctx, cfg, schemaName, runDrop)
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

// forEachSchema connects once per selected schema and hands the stage a
// database handle plus the schema it belongs to.
func forEachSchema(ctx context.Context, cfg *config.Config, schemaName string,
	stage func(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error) error {

	names := []string{schemaName}
	if schemaName == "all" {
		names = []string{"learning", "prefs"}
	}

	for _, name := range names {
		dbName := cfg.LearningDB
		if name == "prefs" {
			dbName = cfg.PrefsDB
		}

		h, err := database.Connect(ctx, cfg, dbName)
		if err != nil {
			return err
		}
		err = stage(ctx, cfg, h, name)
		if closeErr := database.Close(ctx, h); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func runSetup(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error {
	opCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()

	specs := schema.LearningCollections()
	if schemaName == "prefs" {
		specs = schema.PrefsCollections()
	}

	log.Printf("[SETUP] ensuring %d collections in %s", len(specs), h.DB.Name())
	if err := schema.EnsureAll(opCtx, h.DB, specs); err != nil {
		return err
	}
	log.Printf("[SETUP] %s schema ready", schemaName)
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error {
	opCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()

	log.Printf("[SEED] seeding %s schema in %s", schemaName, h.DB.Name())
	if schemaName == "prefs" {
		return seed.Prefs(opCtx, h.DB)
	}
	return seed.Learning(opCtx, h.DB)
}

func runDemo(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error {
	opCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()

	if schemaName == "prefs" {
		return demoPrefs(opCtx, h.DB)
	}
	return demoLearning(opCtx, h.DB)
}

func runPipelines(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error {
	if schemaName == "prefs" {
		// Aggregation reports read the learning schema only
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()
	return runReports(opCtx, h.DB)
}

func runDrop(ctx context.Context, cfg *config.Config, h *database.Handle, schemaName string) error {
	opCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()

	log.Printf("[DROP] dropping database %s - this is irreversible", h.DB.Name())
	return database.Drop(opCtx, h)
}
