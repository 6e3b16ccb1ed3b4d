// Package pos builds catalog entries from OpenStreetMap nodes and exposes the
// catalog operations used by the CLI and the HTTP API.
package pos

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/pos-catalog/internal/model"
	"github.com/sells-group/pos-catalog/internal/osm"
	"github.com/sells-group/pos-catalog/internal/store"
)

// Stage names a step of an import run.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageParsing    Stage = "parsing"
	StageValidating Stage = "validating"
	StageMapping    Stage = "mapping"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Importer runs the fetch, parse, validate, map and persist steps for one
// OSM node. It holds no mutable state and is safe for concurrent use.
type Importer struct {
	client       osm.Client
	store        store.Store
	fetchTimeout time.Duration
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithFetchTimeout bounds the fetch step. Zero or negative disables the bound.
func WithFetchTimeout(d time.Duration) ImporterOption {
	return func(im *Importer) {
		im.fetchTimeout = d
	}
}

// NewImporter creates an Importer.
func NewImporter(client osm.Client, st store.Store, opts ...ImporterOption) *Importer {
	im := &Importer{client: client, store: st}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import fetches the node, builds a POS from it and stores it. Errors from
// every step are returned unchanged: *model.NodeNotFoundError,
// *model.ParseError, *model.MissingFieldsError or *model.DuplicateNameError,
// or a store failure. Nothing is stored unless every step succeeds.
func (im *Importer) Import(ctx context.Context, nodeID int64) (*model.Pos, error) {
	log := zap.L().With(zap.Int64("node_id", nodeID))
	start := time.Now()

	enter := func(s Stage) {
		log.Debug("pos: import stage", zap.String("stage", string(s)))
	}
	fail := func(s Stage, err error) (*model.Pos, error) {
		log.Warn("pos: import failed",
			zap.String("stage", string(StageFailed)),
			zap.String("failed_stage", string(s)),
			zap.Error(err),
		)
		return nil, err
	}

	enter(StageFetching)
	payload, err := im.fetch(ctx, nodeID)
	if err != nil {
		return fail(StageFetching, err)
	}

	enter(StageParsing)
	node, err := osm.Parse(payload)
	if err != nil {
		return fail(StageParsing, err)
	}

	enter(StageValidating)
	if err := Validate(node); err != nil {
		return fail(StageValidating, err)
	}

	enter(StageMapping)
	p := MapNode(node)

	enter(StagePersisting)
	saved, err := im.store.UpsertPos(ctx, p)
	if err != nil {
		return fail(StagePersisting, err)
	}

	log.Info("pos: imported",
		zap.String("stage", string(StageDone)),
		zap.String("pos_id", saved.ID),
		zap.String("name", saved.Name),
		zap.String("type", string(saved.Type)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return saved, nil
}

func (im *Importer) fetch(ctx context.Context, nodeID int64) (string, error) {
	if im.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.fetchTimeout)
		defer cancel()
	}
	return im.client.FetchNode(ctx, nodeID)
}
