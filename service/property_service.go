package service

import (
	"context"
	"errors"

	"zoningcheck-backend/models"
	"zoningcheck-backend/repository"

	"github.com/google/uuid"
)

// PropertyService handles business logic for properties
type PropertyService struct {
	propertyRepo *repository.PropertyRepository
	jobRepo      *repository.AnalysisJobRepository
}

// PropertyServiceOption is a functional option for PropertyService
type PropertyServiceOption func(*PropertyService)

// WithPropertyRepository sets the property repository
func WithPropertyRepository(repo *repository.PropertyRepository) PropertyServiceOption {
	return func(s *PropertyService) {
		s.propertyRepo = repo
	}
}

// WithAnalysisJobRepository sets the analysis job repository
func WithAnalysisJobRepository(repo *repository.AnalysisJobRepository) PropertyServiceOption {
	return func(s *PropertyService) {
		s.jobRepo = repo
	}
}

// NewPropertyService creates a new property service
func NewPropertyService(opts ...PropertyServiceOption) *PropertyService {
	s := &PropertyService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePropertyRequest represents a request to create a property
type CreatePropertyRequest struct {
	UserID         uuid.UUID
	Status         models.PropertyStatus
	DisplayAddress string
	Postcode       string
	Municipality   string
}

// CreatePropertyResult represents the result of creating a property
type CreatePropertyResult struct {
	Property *models.Property
}

// CreateProperty creates a new property with default values
func (s *PropertyService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*CreatePropertyResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}

	property := &models.Property{
		UserID:         req.UserID,
		Status:         req.Status,
		DisplayAddress: req.DisplayAddress,
		Postcode:       req.Postcode,
		Municipality:   req.Municipality,
		Designations:   []string{},
		Maatvoeringen:  make(models.Maatvoeringen, 0),
	}

	if property.Status == "" {
		property.Status = models.StatusDraft
	}

	err := s.propertyRepo.Create(ctx, property)
	if err != nil {
		return nil, err
	}

	return &CreatePropertyResult{Property: property}, nil
}

// GetPropertyRequest represents a request to get a property
type GetPropertyRequest struct {
	ID uuid.UUID
}

// GetPropertyResult represents the result of getting a property
type GetPropertyResult struct {
	Property *models.Property
}

// GetProperty retrieves a property by ID
func (s *PropertyService) GetProperty(ctx context.Context, req GetPropertyRequest) (*GetPropertyResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}

	property, err := s.propertyRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &GetPropertyResult{Property: property}, nil
}

// UpdatePropertyRequest represents a request to update a property
type UpdatePropertyRequest struct {
	Property *models.Property
}

// UpdatePropertyResult represents the result of updating a property
type UpdatePropertyResult struct {
	Property *models.Property
}

// UpdateProperty updates a property
func (s *PropertyService) UpdateProperty(ctx context.Context, req UpdatePropertyRequest) (*UpdatePropertyResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}

	err := s.propertyRepo.Update(ctx, req.Property)
	if err != nil {
		return nil, err
	}

	return &UpdatePropertyResult{Property: req.Property}, nil
}

// ListPropertiesRequest represents a request to list properties
type ListPropertiesRequest struct {
	UserID uuid.UUID
	Status *models.PropertyStatus
	Limit  int
	Offset int
}

// ListPropertiesResult represents the result of listing properties
type ListPropertiesResult struct {
	Properties []*models.Property
}

// ListProperties lists properties for a user
func (s *PropertyService) ListProperties(ctx context.Context, req ListPropertiesRequest) (*ListPropertiesResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}

	properties, err := s.propertyRepo.ListByUserID(ctx, req.UserID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListPropertiesResult{Properties: properties}, nil
}

// DeletePropertyRequest represents a request to delete a property
type DeletePropertyRequest struct {
	ID uuid.UUID
}

// DeletePropertyResult represents the result of deleting a property
type DeletePropertyResult struct{}

// DeleteProperty deletes a property
func (s *PropertyService) DeleteProperty(ctx context.Context, req DeletePropertyRequest) (*DeletePropertyResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}

	err := s.propertyRepo.Delete(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &DeletePropertyResult{}, nil
}
