package thing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agenthands/simcomp/internal/apierr"
)

// Type classifies a stored thing.
type Type string

const (
	TypeUnknown         Type = "UNKNOWN"
	TypeComparison      Type = "COMPARISON"
	TypeDiagram         Type = "DIAGRAM"
	TypeVisualization   Type = "VISUALIZATION"
	TypeDraftComparison Type = "DRAFT_COMPARISON"
	TypeList            Type = "LIST"
	TypeReview          Type = "REVIEW"
	TypeQualityReview   Type = "QUALITY_REVIEW"
	TypePaperVersion    Type = "PAPER_VERSION"
	TypeAny             Type = "ANY"
)

var types = map[Type]bool{
	TypeUnknown: true, TypeComparison: true, TypeDiagram: true, TypeVisualization: true,
	TypeDraftComparison: true, TypeList: true, TypeReview: true, TypeQualityReview: true,
	TypePaperVersion: true, TypeAny: true,
}

// ParseType accepts the type names case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !types[t] {
		return "", apierr.BadRequest("thing.ParseType", "Unknown thing_type=%q", s)
	}
	return t, nil
}

// Thing is an opaque JSON document stored under a (type, key) pair.
type Thing struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ThingType Type           `gorm:"column:thing_type;not null;uniqueIndex:idx_things_type_key" json:"thing_type"`
	ThingKey  string         `gorm:"column:thing_key;not null;uniqueIndex:idx_things_type_key" json:"thing_key"`
	Data      datatypes.JSON `gorm:"column:data;not null" json:"data"`
	Config    datatypes.JSON `gorm:"column:config" json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Thing) TableName() string {
	return "things"
}

func (t *Thing) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
