package handlers

import (
	"log/slog"

	"imovel-backend/internal/models"
	"imovel-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

const documentFilename = "imovel.pdf"

// GeneratePDFHandler answers with the PDF built from the selected images
func GeneratePDFHandler(documentService *services.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.GenerateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidRequest})
		}

		pdf, err := documentService.Generate(c.Context(), req.Images, nil)
		if err != nil {
			return err
		}

		slog.InfoContext(c.Context(), "pdf generated",
			"user_id", c.Locals(LocalUserID), "pages", len(req.Images), "bytes", len(pdf))

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, "attachment; filename="+documentFilename)
		return c.Send(pdf)
	}
}
