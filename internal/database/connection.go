// connection.go
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

package database

import (
	"context"
	"fmt"
	"log"

	"github.com/localnerve/lp-docdb/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Handle bundles the client with a selected database so callers thread an
// explicit database context instead of relying on ambient selection.
type Handle struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect establishes a client connection to the document store and selects dbName
func Connect(ctx context.Context, cfg *config.Config, dbName string) (*Handle, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	log.Printf("Connected to document store, database: %s", dbName)

	return &Handle{
		Client: client,
		DB:     client.Database(dbName),
	}, nil
}

// Close disconnects the underlying client
func Close(ctx context.Context, h *Handle) error {
	if h == nil || h.Client == nil {
		return nil
	}
	return h.Client.Disconnect(ctx)
}

// Drop removes the selected database entirely. Irreversible.
func Drop(ctx context.Context, h *Handle) error {
	name := h.DB.Name()
	if err := h.DB.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	log.Printf("[DROP] database %s dropped", name)
	return nil
}

// Ping verifies the connection is alive
func Ping(ctx context.Context, h *Handle) error {
	return h.Client.Ping(ctx, readpref.Primary())
}
