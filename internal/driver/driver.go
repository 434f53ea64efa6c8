// Package driver wraps the bolt connection used as the service's document
// store. Taxonomy snapshots, analyses, and cached transcripts are stored as
// nodes keyed by string id; every write is a MERGE upsert, which is what
// makes cross-process seed races self-healing.
package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

type Driver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

type BoltDriver struct {
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

func NewBoltDriver(ctx context.Context, uri, username, password string, log *zap.Logger) (*BoltDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create bolt driver: %w", err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify bolt connectivity: %w", err)
	}
	log.Info("connected to document store", zap.String("uri", uri))
	return &BoltDriver{driver: d, log: log}, nil
}

func (d *BoltDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates lookup indices. Failures are logged and skipped since
// the index may already exist.
func (d *BoltDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Taxonomy(id);",
		"CREATE INDEX ON :Analysis(id);",
		"CREATE INDEX ON :Transcript(id);",
	}
	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.log.Warn("index creation skipped", zap.String("query", q), zap.Error(err))
		}
	}
	return nil
}

func (d *BoltDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
