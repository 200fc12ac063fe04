package handlers

import (
	"imovel-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GetPropertyPhotosHandler returns a property and its photos by code
func GetPropertyPhotosHandler(propertyService *services.PropertyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := propertyService.GetPropertyWithPhotos(c.Context(), c.Params("codigo"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
