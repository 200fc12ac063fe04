package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"imovel-backend/internal/models"
	"imovel-backend/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// frames queued while a document is being generated
const wsReadBuffer = 4

// WSUpgradeMiddleware upgrades the connection to WebSocket
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// DocumentStreamHandler generates documents over a websocket. Each text frame
// carries a {"imagensSelecionadas": [...]} request; the server answers with a
// progress event per page, then a complete event followed by one binary frame
// holding the PDF, or a single error event. Closing the socket cancels the
// document in progress.
func DocumentStreamHandler(documentService *services.DocumentService) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID := c.Locals(LocalUserID)

		ctx, cancel := context.WithCancel(context.Background())
		frames, readerDone := readFrames(ctx, cancel, c, userID)
		defer func() {
			cancel()
			_ = c.Close()
			<-readerDone
		}()

		for msg := range frames {
			var req models.GenerateDocumentRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				slog.Debug("document stream bad request", "user_id", userID, "error", err)
				if !sendEvent(c, models.DocumentEvent{Event: "error", Status: fiber.StatusBadRequest, Error: msgInvalidRequest}) {
					return
				}
				continue
			}

			progress := func(page, total int, url string) {
				sendEvent(c, models.DocumentEvent{Event: "progress", Page: page, Total: total, URL: url})
			}

			pdf, err := documentService.Generate(ctx, req.Images, progress)
			if err != nil {
				if ctx.Err() != nil {
					slog.Debug("document stream canceled", "user_id", userID)
					return
				}
				status, msg := classify(err)
				if status >= fiber.StatusInternalServerError {
					slog.Error("document stream failed", "user_id", userID, "error", err)
				}
				if !sendEvent(c, models.DocumentEvent{Event: "error", Status: status, Error: msg}) {
					return
				}
				continue
			}

			if !sendEvent(c, models.DocumentEvent{
				Event:    "complete",
				Total:    len(req.Images),
				Size:     len(pdf),
				Filename: documentFilename,
			}) {
				return
			}
			if err := c.WriteMessage(websocket.BinaryMessage, pdf); err != nil {
				slog.Warn("document stream write", "user_id", userID, "error", err)
				return
			}
		}
	})
}

// readFrames reads the connection on its own goroutine so a disconnect is
// noticed while a document is generated. A read error cancels ctx and closes
// frames; readerDone is closed once the goroutine has stopped touching c.
func readFrames(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, userID any) (<-chan []byte, <-chan struct{}) {
	frames := make(chan []byte, wsReadBuffer)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer close(frames)
		defer cancel()
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn("document stream closed", "user_id", userID, "error", err)
				}
				return
			}
			select {
			case frames <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames, readerDone
}

// sendEvent writes one JSON frame; only the handler goroutine writes to c.
func sendEvent(c *websocket.Conn, ev models.DocumentEvent) bool {
	if err := c.WriteJSON(ev); err != nil {
		slog.Warn("document stream write", "event", ev.Event, "error", err)
		return false
	}
	return true
}
