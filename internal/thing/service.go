package thing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agenthands/simcomp/internal/apierr"
	"github.com/agenthands/simcomp/internal/core/export"
	"github.com/agenthands/simcomp/internal/logger"
)

// Service stores and exports things.
type Service struct {
	Store Store
	// AllowUnknown admits TypeUnknown, which only test deployments use.
	AllowUnknown bool
	log          *logger.Logger
}

func NewService(store Store, allowUnknown bool, log *logger.Logger) *Service {
	return &Service{Store: store, AllowUnknown: allowUnknown, log: log.With("service", "ThingService")}
}

// Add stores data and config under (thingType, thingKey).
func (s *Service) Add(ctx context.Context, thingType Type, thingKey string, data, config map[string]any) (*Thing, error) {
	if thingType == TypeUnknown && !s.AllowUnknown {
		return nil, apierr.BadRequest("thing.Service", "thing_type=%q is only allowed for test usage.", thingType)
	}
	if thingKey == "" {
		return nil, apierr.BadRequest("thing.Service", "thing_key must not be empty")
	}
	if len(data) == 0 {
		return nil, apierr.BadRequest("thing.Service", `empty dict is not allowed for field "data"`)
	}

	existing, err := s.Store.GetByTypeAndKey(ctx, nil, thingType, thingKey)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "thing.Service", err)
	}
	if existing != nil {
		return nil, apierr.Conflict("thing.Service",
			"Thing with thing_type=%q and thing_key=%q already exists.", thingType, thingKey)
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, apierr.BadRequest("thing.Service", "data cannot be encoded: %v", err)
	}
	if config == nil {
		config = map[string]any{}
	}
	rawConfig, err := json.Marshal(config)
	if err != nil {
		return nil, apierr.BadRequest("thing.Service", "config cannot be encoded: %v", err)
	}

	t := &Thing{ThingType: thingType, ThingKey: thingKey, Data: datatypes.JSON(rawData), Config: datatypes.JSON(rawConfig)}
	if err := s.Store.Create(ctx, nil, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("thing.Service",
				"Thing with thing_type=%q and thing_key=%q already exists.", thingType, thingKey)
		}
		return nil, apierr.New(http.StatusInternalServerError, "thing.Service", fmt.Errorf("failed to store thing: %w", err))
	}
	s.log.Info("Stored thing", "thing_type", thingType, "thing_key", thingKey, "id", t.ID)
	return t, nil
}

// Get returns the thing stored under (thingType, thingKey).
func (s *Service) Get(ctx context.Context, thingType Type, thingKey string) (*Thing, error) {
	t, err := s.Store.GetByTypeAndKey(ctx, nil, thingType, thingKey)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "thing.Service", err)
	}
	if t == nil {
		return nil, apierr.NotFound("thing.Service",
			"Thing with thing_type=%q and thing_key=%q not found.", thingType, thingKey)
	}
	return t, nil
}

// Export renders a stored comparison or review. A comparison's stored config
// drives the like-UI row selection; a review pulls the tables of the
// comparisons it links from this service.
func (s *Service) Export(ctx context.Context, thingType Type, thingKey string, format export.Format, likeUI bool) (*export.Artifact, error) {
	t, err := s.Get(ctx, thingType, thingKey)
	if err != nil {
		return nil, err
	}

	switch thingType {
	case TypeComparison:
		return s.exportComparison(t, format, likeUI)
	case TypeReview:
		return export.ExportReview([]byte(t.Data), format, func(comparisonID string) (string, error) {
			a, err := s.Export(ctx, TypeComparison, comparisonID, export.FormatHTML, true)
			if err != nil {
				s.log.Warn("Review links a comparison that cannot be exported", "thing_key", thingKey, "comparison", comparisonID, "error", err)
				return "", err
			}
			return a.Text, nil
		})
	}
	return nil, apierr.NotImplemented("thing.Service", "Exporting thing with thing_type=%q is not supported", thingType)
}

func (s *Service) exportComparison(t *Thing, format export.Format, likeUI bool) (*export.Artifact, error) {
	var config map[string]any
	if len(t.Config) > 0 {
		if err := json.Unmarshal(t.Config, &config); err != nil {
			s.log.Warn("Ignoring unreadable thing config", "thing_key", t.ThingKey, "error", err)
			config = nil
		}
	}
	return export.Export([]byte(t.Data), format, config, likeUI)
}
