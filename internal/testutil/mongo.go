//go:build integration

// Package testutil starts the MongoDB container shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// defaultMongoImage can be overridden with MONGO_TEST_IMAGE.
const defaultMongoImage = "mongo:7.0"

// Mongo is a running MongoDB testcontainer.
type Mongo struct {
	Container testcontainers.Container
	URI       string
}

// StartMongo starts a dedicated MongoDB container. Tests that only need a
// database should prefer the shared container of SetupTestMainWithMongoDB.
func StartMongo(ctx context.Context) (*Mongo, error) {
	image := os.Getenv("MONGO_TEST_IMAGE")
	if image == "" {
		image = defaultMongoImage
	}

	container, err := mongodb.Run(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	return &Mongo{Container: container, URI: uri}, nil
}

// Terminate stops the container.
func (m *Mongo) Terminate(ctx context.Context) error {
	if m == nil || m.Container == nil {
		return nil
	}
	if err := m.Container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate container: %w", err)
	}
	return nil
}

var (
	sharedMu    sync.RWMutex
	sharedMongo *Mongo
)

// SetupTestMainWithMongoDB runs the package tests against one container.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	mongo, err := StartMongo(ctx)
	if err != nil {
		panic(err)
	}
	sharedMu.Lock()
	sharedMongo = mongo
	sharedMu.Unlock()

	code := m.Run()

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if err := sharedMongo.Terminate(ctx); err != nil {
		// Docker reaps the container eventually.
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to terminate shared MongoDB container: %v\n", err)
	}
	sharedMongo = nil
	return code
}

// SharedURI returns the connection string of the shared container.
func SharedURI() string {
	sharedMu.RLock()
	defer sharedMu.RUnlock()

	if sharedMongo == nil {
		panic("shared MongoDB container not started - use SetupTestMainWithMongoDB in TestMain")
	}
	return sharedMongo.URI
}

var dbNameReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ".", "_", "$", "_", "\"", "_")

// DatabaseName derives a database name unique to the running test, so tests
// sharing a container never see each other's orders.
func DatabaseName(tb testing.TB) string {
	name := dbNameReplacer.Replace(tb.Name())
	if len(name) > 50 {
		name = name[:50]
	}
	return fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1000000)
}
