// testcontainers.go
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

// This file is a helper for running tests with testcontainers.
// It is used by the integration tests and by the standalone testcontainers executable.
// Expects environment variables to be loaded from .env files.
//

package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type TestContainers struct {
	Network        *testcontainers.DockerNetwork
	MongoContainer testcontainers.Container
	MongoURI       string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.MongoContainer != nil {
		if err := tc.MongoContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Mongo: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create and start the Mongo container
	mongoImage := os.Getenv("MONGO_IMAGE")
	if mongoImage == "" {
		mongoImage = "mongo:7.0"
	}
	mongoNetworkName := os.Getenv("MONGO_HOST")
	if mongoNetworkName == "" {
		mongoNetworkName = "mongo"
	}
	tcpMongoPort, err := nat.NewPort("tcp", "27017")
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create Mongo port")
	}
	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Name:         fmt.Sprintf("lp-docdb-mongo-%s", uuid.New().String()),
			Image:        mongoImage,
			ExposedPorts: []string{string(tcpMongoPort)},
			WaitingFor:   wait.ForListeningPort(tcpMongoPort).WithStartupTimeout(60 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {mongoNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Mongo")
	}
	testContainers.MongoContainer = mongoContainer

	mongoHost, _ := mongoContainer.Host(ctx)
	mongoPort, _ := mongoContainer.MappedPort(ctx, tcpMongoPort)
	testContainers.MongoURI = fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort.Port())

	if err := waitForMongo(ctx, testContainers.MongoURI); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Mongo not ready after 30 seconds")
	}

	// Log the localhost and mapped port for test processes
	logMessage(t, "MONGO_URI=%s", testContainers.MongoURI)
	logMessage(t, "Mongo testcontainer started successfully")
	return testContainers, nil
}

// waitForMongo pings until the server answers commands, not just TCP
func waitForMongo(ctx context.Context, uri string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	for i := 0; i < 30; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		err = client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return err
}

func logMessage(t *testing.T, format string, args ...interface{}) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}

func exitWithError(t *testing.T, err error, message string) {
	if t != nil {
		t.Fatalf("%s: %v", message, err)
	} else {
		fmt.Printf("%s: %v\n", message, err)
		os.Exit(1)
	}
}
