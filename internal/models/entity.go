// internal/models/entity.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CulturalEntity is reference catalog content (a deity, temple, ritual,
// ...) that paid content items and marketplace listings attach to.
type CulturalEntity struct {
	BaseModel
	Name        string         `json:"name" gorm:"size:255;not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Type        EntityType     `json:"type" gorm:"type:varchar(20);not null;index"`
	Description string         `json:"description" gorm:"type:text;not null"`
	History     string         `json:"history,omitempty" gorm:"type:text"`
	GeoLocation string         `json:"geo_location,omitempty" gorm:"size:255"`
	ImageURL    string         `json:"image_url,omitempty" gorm:"size:512"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	ContentItems []ContentItem `json:"content_items,omitempty" gorm:"foreignKey:EntityID"`
	Listings     []Listing     `json:"listings,omitempty" gorm:"foreignKey:EntityID"`
}

// EntityRelationship links two entities in the knowledge graph
// (parent_of, located_in, associated_with).
type EntityRelationship struct {
	FromEntityID     uuid.UUID `json:"from_entity_id" gorm:"type:uuid;primaryKey"`
	ToEntityID       uuid.UUID `json:"to_entity_id" gorm:"type:uuid;primaryKey"`
	RelationshipType string    `json:"relationship_type" gorm:"size:100;not null"`

	// Relationships
	FromEntity CulturalEntity `json:"from_entity,omitempty" gorm:"foreignKey:FromEntityID"`
	ToEntity   CulturalEntity `json:"to_entity,omitempty" gorm:"foreignKey:ToEntityID"`
}
