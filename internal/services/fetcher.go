package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const maxImageRedirects = 5

type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher downloads images with a shared fasthttp client, following
// up to five redirects across hosts. A zero Timeout leaves the transport
// default in place.
type HTTPImageFetcher struct {
	Timeout  time.Duration
	MaxBytes int

	once   sync.Once
	client *fasthttp.Client
}

func (f *HTTPImageFetcher) httpClient() *fasthttp.Client {
	f.once.Do(func() {
		f.client = &fasthttp.Client{
			Name:                "imovel-backend",
			ReadTimeout:         f.Timeout,
			WriteTimeout:        f.Timeout,
			MaxResponseBodySize: f.MaxBytes,
		}
	})
	return f.client
}

type fetchResult struct {
	code int
	body []byte
	err  error
}

// Fetch returns as soon as ctx is done. The request itself runs to
// completion in the background, bounded by Timeout.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := f.httpClient()

	done := make(chan fetchResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.Header.SetMethod(fiber.MethodGet)
		req.SetRequestURI(url)
		// DoTimeout would skip redirect handling; timeouts live on the client
		err := client.DoRedirects(req, resp, maxImageRedirects)
		done <- fetchResult{
			code: resp.StatusCode(),
			body: append([]byte(nil), resp.Body()...),
			err:  err,
		}
	}()

	var res fetchResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, fasthttp.ErrBodyTooLarge) {
			return nil, fmt.Errorf("image larger than %d bytes: %w", f.MaxBytes, res.err)
		}
		return nil, res.err
	}
	if res.code < fiber.StatusOK || res.code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", res.code)
	}
	return res.body, nil
}
