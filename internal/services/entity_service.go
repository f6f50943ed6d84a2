// internal/services/entity_service.go
package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

// EntityService manages the cultural reference catalog that content items
// and marketplace listings hang off.
type EntityService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

type CreateEntityRequest struct {
	Name        string            `json:"name" validate:"required,min=2,max=255"`
	Type        models.EntityType `json:"type" validate:"required,oneof=deity mythology temple sculpture ritual"`
	Description string            `json:"description" validate:"required,min=10"`
	History     string            `json:"history,omitempty"`
	GeoLocation string            `json:"geo_location,omitempty" validate:"max=255"`
	ImageURL    string            `json:"image_url,omitempty" validate:"omitempty,url"`
	Tags        []string          `json:"tags,omitempty"`
}

type CreateContentItemRequest struct {
	Kind        models.ContentKind `json:"kind" validate:"required,oneof=audio pdf video deep_mythology"`
	Title       string             `json:"title" validate:"required,min=3,max=255"`
	Description string             `json:"description,omitempty" validate:"max=2000"`
	Price       float64            `json:"price" validate:"gte=0"`
	IsPaid      *bool              `json:"is_paid,omitempty"`
	PreviewURL  string             `json:"preview_url,omitempty" validate:"omitempty,url"`
	ContentURL  string             `json:"content_url" validate:"required,url"`
}

type EntitySearchParams struct {
	utils.PaginationParams
	Type *models.EntityType `json:"type,omitempty"`
	Tag  string             `json:"tag,omitempty"`
}

func NewEntityService(db *gorm.DB, logger *logrus.Logger) *EntityService {
	return &EntityService{db: db, logger: logger}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from an entity name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *EntityService) Create(adminID uuid.UUID, req *CreateEntityRequest) (*models.CulturalEntity, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid entity", err)
	}

	entity := &models.CulturalEntity{
		Name:        strings.TrimSpace(req.Name),
		Slug:        Slugify(req.Name),
		Type:        req.Type,
		Description: req.Description,
		History:     req.History,
		GeoLocation: req.GeoLocation,
		ImageURL:    req.ImageURL,
		Tags:        pq.StringArray(req.Tags),
	}

	if err := s.db.Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Newf(apperrors.KindValidation, "entity slug %q already exists", entity.Slug)
		}
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"slug":      entity.Slug,
		"admin_id":  adminID,
	}).Info("Cultural entity created")

	return entity, nil
}

// AddContentItem attaches a content item to an entity. Price and IsPaid
// must agree: free items carry no price, paid items a positive one.
func (s *EntityService) AddContentItem(adminID, entityID uuid.UUID, req *CreateContentItemRequest) (*models.ContentItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid content item", err)
	}

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}
	if isPaid && req.Price <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "paid content requires a positive price")
	}
	if !isPaid && req.Price != 0 {
		return nil, apperrors.New(apperrors.KindValidation, "free content cannot carry a price")
	}

	var count int64
	if err := s.db.Model(&models.CulturalEntity{}).Where("id = ?", entityID).Count(&count).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	if count == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "cultural entity not found")
	}

	item := &models.ContentItem{
		EntityID:    entityID,
		Kind:        req.Kind,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsPaid:      isPaid,
		PreviewURL:  req.PreviewURL,
		ContentURL:  req.ContentURL,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"content_item_id": item.ID,
		"entity_id":       entityID,
		"kind":            item.Kind,
		"admin_id":        adminID,
	}).Info("Content item added")

	return item, nil
}

// Relate links two entities in the knowledge graph.
func (s *EntityService) Relate(fromID, toID uuid.UUID, relationshipType string) error {
	if fromID == toID {
		return apperrors.New(apperrors.KindValidation, "entity cannot relate to itself")
	}
	if relationshipType == "" {
		return apperrors.New(apperrors.KindValidation, "relationship type is required")
	}

	for _, id := range []uuid.UUID{fromID, toID} {
		var count int64
		if err := s.db.Model(&models.CulturalEntity{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Storage(err)
		}
		if count == 0 {
			return apperrors.New(apperrors.KindNotFound, "cultural entity not found")
		}
	}

	rel := &models.EntityRelationship{
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: relationshipType,
	}
	if err := s.db.Create(rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.New(apperrors.KindValidation, "relationship already exists")
		}
		return apperrors.Storage(err)
	}
	return nil
}

func (s *EntityService) GetByID(entityID uuid.UUID) (*models.CulturalEntity, error) {
	var entity models.CulturalEntity
	err := s.db.Preload("ContentItems").First(&entity, "id = ?", entityID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "cultural entity not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &entity, nil
}

func (s *EntityService) GetBySlug(slug string) (*models.CulturalEntity, error) {
	var entity models.CulturalEntity
	err := s.db.Preload("ContentItems").First(&entity, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "cultural entity not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &entity, nil
}

// Related returns the entities linked from the given one.
func (s *EntityService) Related(entityID uuid.UUID) ([]models.EntityRelationship, error) {
	var rels []models.EntityRelationship
	err := s.db.Preload("ToEntity").Where("from_entity_id = ?", entityID).Find(&rels).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return rels, nil
}

func (s *EntityService) List(params *EntitySearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.CulturalEntity{})

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Tag != "" {
		query = query.Where("? = ANY(tags)", params.Tag)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var entities []models.CulturalEntity
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "name", "type"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&entities).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(entities, total, params.PaginationParams)
	return &result, nil
}
