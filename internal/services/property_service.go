package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"imovel-backend/internal/models"
	"imovel-backend/internal/store"
)

var propertyCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

type PropertyStore interface {
	GetPropertyByCode(ctx context.Context, code string) (*models.Property, error)
	ListPhotosByProperty(ctx context.Context, propertyID int64) ([]models.Photo, error)
}

type PropertyService struct {
	store PropertyStore
}

func NewPropertyService(store PropertyStore) *PropertyService {
	return &PropertyService{store: store}
}

func ValidPropertyCode(code string) bool {
	return propertyCodePattern.MatchString(code)
}

// GetPropertyWithPhotos returns the property with the given code and every
// photo that references it, in store order.
func (s *PropertyService) GetPropertyWithPhotos(ctx context.Context, code string) (*models.PropertyResponse, error) {
	if !ValidPropertyCode(code) {
		return nil, ErrInvalidCode
	}

	property, err := s.store.GetPropertyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	photos, err := s.store.ListPhotosByProperty(ctx, property.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if photos == nil {
		photos = []models.Photo{}
	}

	return &models.PropertyResponse{
		Code:     property.Code,
		Property: property,
		Photos:   photos,
	}, nil
}
