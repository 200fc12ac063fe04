package handlers

import (
	"errors"
	"log/slog"

	"imovel-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Client-facing messages. Details stay in the server log.
const (
	msgInvalidRequest     = "Requisição inválida"
	msgInvalidCredentials = "Credenciais inválidas"
	msgMissingToken       = "Token não fornecido"
	msgInvalidToken       = "Token inválido ou expirado"
	msgInvalidCode        = "Código de imóvel inválido"
	msgNotFound           = "Imóvel não encontrado"
	msgEmptySelection     = "Nenhuma imagem foi selecionada."
	msgTooManyImages      = "Número de imagens selecionadas acima do permitido."
	msgUnsupportedFormat  = "Formato de imagem não suportado. Apenas JPG e PNG são permitidos."
	msgPDFFailed          = "Erro ao gerar o PDF"
	msgInternal           = "Erro interno do servidor"
)

// ErrorHandler renders every error returned by a handler as {"error": msg}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.Context(), "request failed",
			"method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		slog.DebugContext(c.Context(), "request rejected",
			"method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// classify maps an error to its HTTP status and public message.
func classify(err error) (int, string) {
	var fe *fiber.Error
	var ie *services.ImageError

	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message

	case errors.Is(err, services.ErrInvalidCode):
		return fiber.StatusBadRequest, msgInvalidCode
	case errors.Is(err, services.ErrEmptySelection):
		return fiber.StatusBadRequest, msgEmptySelection
	case errors.Is(err, services.ErrSelectionTooLarge):
		return fiber.StatusBadRequest, msgTooManyImages
	case errors.Is(err, services.ErrUnsupportedFormat):
		if errors.As(err, &ie) {
			return fiber.StatusBadRequest, msgUnsupportedFormat + " (" + ie.URL + ")"
		}
		return fiber.StatusBadRequest, msgUnsupportedFormat

	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, services.ErrMissingCredential):
		return fiber.StatusUnauthorized, msgMissingToken
	case errors.Is(err, services.ErrInvalidCredential):
		return fiber.StatusUnauthorized, msgInvalidToken

	case errors.Is(err, services.ErrPropertyNotFound):
		return fiber.StatusNotFound, msgNotFound

	case errors.Is(err, services.ErrImageFetchFailed),
		errors.Is(err, services.ErrImageDecodeFailed):
		return fiber.StatusInternalServerError, msgPDFFailed
	default:
		return fiber.StatusInternalServerError, msgInternal
	}
}
