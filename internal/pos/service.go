package pos

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pos-catalog/internal/model"
	"github.com/sells-group/pos-catalog/internal/osm"
	"github.com/sells-group/pos-catalog/internal/store"
)

// Service is the catalog facade used by the CLI and the HTTP API.
type Service struct {
	store    store.Store
	importer *Importer
}

// NewService creates a Service over st that imports nodes through client.
func NewService(st store.Store, client osm.Client, opts ...ImporterOption) *Service {
	return &Service{
		store:    st,
		importer: NewImporter(client, st, opts...),
	}
}

// ImportFromOsmNode imports one OSM node as a new POS. See Importer.Import.
func (s *Service) ImportFromOsmNode(ctx context.Context, nodeID int64) (*model.Pos, error) {
	return s.importer.Import(ctx, nodeID)
}

// List returns every POS ordered by name.
func (s *Service) List(ctx context.Context) ([]model.Pos, error) {
	return s.store.ListPos(ctx)
}

// Get returns the POS with id or *model.PosNotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*model.Pos, error) {
	return s.store.GetPos(ctx, id)
}

// Clear removes every POS.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.store.ClearPos(ctx)
	if err != nil {
		return 0, err
	}
	zap.L().Info("pos: catalog cleared", zap.Int("removed", n))
	return n, nil
}

// Upsert creates p when it has no ID and updates the existing POS otherwise.
// Updating an unknown ID yields *model.PosNotFoundError; invalid input yields
// *model.InvalidPosError. Blank Type and Campus fall back to OTHER and
// DefaultCampus.
func (s *Service) Upsert(ctx context.Context, p *model.Pos) (*model.Pos, error) {
	if p == nil {
		return nil, eris.New("pos: upsert: nil pos")
	}
	in := *p
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = model.PosTypeOther
	}
	if in.Campus == "" {
		in.Campus = DefaultCampus
	}
	if err := checkPos(&in); err != nil {
		return nil, err
	}

	if in.ID != "" {
		if _, err := s.store.GetPos(ctx, in.ID); err != nil {
			return nil, err
		}
	}
	return s.store.UpsertPos(ctx, &in)
}

func checkPos(p *model.Pos) error {
	switch {
	case p.Name == "":
		return &model.InvalidPosError{Field: "name", Reason: "must not be blank"}
	case !p.Type.Valid():
		return &model.InvalidPosError{Field: "type", Reason: "must be one of CAFE, RESTAURANT, OTHER"}
	case !p.Campus.Valid():
		return &model.InvalidPosError{Field: "campus", Reason: "must be one of ALTSTADT, BERGHEIM, INF"}
	case (p.Latitude == nil) != (p.Longitude == nil):
		return &model.InvalidPosError{Field: "latitude/longitude", Reason: "must be set together"}
	case p.Latitude != nil && !model.ValidLatitude(*p.Latitude):
		return &model.InvalidPosError{Field: "latitude", Reason: "must be within [-90, 90]"}
	case p.Longitude != nil && !model.ValidLongitude(*p.Longitude):
		return &model.InvalidPosError{Field: "longitude", Reason: "must be within [-180, 180]"}
	}
	return nil
}
