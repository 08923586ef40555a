package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-mapper/internal/audit"
	"github.com/serroba/url-mapper/internal/shortener"
	"go.uber.org/zap"
)

// MappingResolver is the set of mapping operations the HTTP layer needs.
type MappingResolver interface {
	List(ctx context.Context) ([]shortener.Mapping, error)
	Get(ctx context.Context, id shortener.ID) (*shortener.Mapping, error)
	Create(ctx context.Context, m shortener.Mapping) (*shortener.Mapping, error)
	Update(ctx context.Context, id shortener.ID, m shortener.Mapping) (*shortener.Mapping, error)
	Delete(ctx context.Context, id shortener.ID) error
	DeleteAll(ctx context.Context) error
	ResolveForward(ctx context.Context, fullURL string) (string, error)
	ResolveReverse(ctx context.Context, shortURL string) (string, error)
}

// URLHandler handles mapping operations.
type URLHandler struct {
	resolver MappingResolver
	events   audit.Publishers
	logger   *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(resolver MappingResolver, events audit.Publishers, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		resolver: resolver,
		events:   events,
		logger:   logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for change events.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	RequestID string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func actorFromContext(ctx context.Context) audit.Actor {
	meta := RequestMetaFromContext(ctx)

	return audit.Actor{
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}
}

func (h *URLHandler) ListMappings(ctx context.Context, _ *struct{}) (*ListMappingsResponse, error) {
	mappings, err := h.resolver.List(ctx)
	if err != nil {
		return nil, h.toHTTPError(ctx, "list", err)
	}

	resp := &ListMappingsResponse{Body: make([]MappingBody, 0, len(mappings))}
	for i := range mappings {
		resp.Body = append(resp.Body, toBody(&mappings[i]))
	}

	return resp, nil
}

func (h *URLHandler) GetMapping(ctx context.Context, req *GetMappingRequest) (*MappingResponse, error) {
	m, err := h.resolver.Get(ctx, shortener.ID(req.ID))
	if err != nil {
		return nil, h.toHTTPError(ctx, "get", err)
	}

	return &MappingResponse{Body: toBody(m)}, nil
}

func (h *URLHandler) ResolveForward(
	ctx context.Context,
	req *ResolveForwardRequest,
) (*ResolveForwardResponse, error) {
	shortURL, err := h.resolver.ResolveForward(ctx, req.FullURL)
	if err != nil {
		return nil, h.toHTTPError(ctx, "resolve forward", err)
	}

	resp := &ResolveForwardResponse{}
	resp.Body.ShortURL = shortURL

	return resp, nil
}

func (h *URLHandler) ResolveReverse(
	ctx context.Context,
	req *ResolveReverseRequest,
) (*ResolveReverseResponse, error) {
	fullURL, err := h.resolver.ResolveReverse(ctx, req.ShortURL)
	if err != nil {
		return nil, h.toHTTPError(ctx, "resolve reverse", err)
	}

	resp := &ResolveReverseResponse{}
	resp.Body.FullURL = fullURL

	return resp, nil
}

func (h *URLHandler) CreateMapping(ctx context.Context, req *CreateMappingRequest) (*CreateMappingResponse, error) {
	m, err := h.resolver.Create(ctx, req.Body.toMapping())
	if err != nil {
		return nil, h.toHTTPError(ctx, "create", err)
	}

	h.publish(ctx, "created", h.events.Created(ctx, &audit.MappingCreatedEvent{
		ID:        int64(m.ID),
		FullURL:   m.FullURL,
		ShortURL:  m.ShortURL,
		CreatedAt: m.CreatedAt,
		Actor:     actorFromContext(ctx),
	}))

	return &CreateMappingResponse{
		Location: fmt.Sprintf("/api/urls/%d", m.ID),
		Body:     toBody(m),
	}, nil
}

func (h *URLHandler) UpdateMapping(ctx context.Context, req *UpdateMappingRequest) (*NoContentResponse, error) {
	m, err := h.resolver.Update(ctx, shortener.ID(req.ID), req.Body.toMapping())
	if err != nil {
		return nil, h.toHTTPError(ctx, "update", err)
	}

	h.publish(ctx, "updated", h.events.Updated(ctx, &audit.MappingUpdatedEvent{
		ID:        int64(m.ID),
		FullURL:   m.FullURL,
		ShortURL:  m.ShortURL,
		UpdatedAt: m.UpdatedAt,
		Actor:     actorFromContext(ctx),
	}))

	return &NoContentResponse{}, nil
}

func (h *URLHandler) DeleteMapping(ctx context.Context, req *DeleteMappingRequest) (*NoContentResponse, error) {
	if err := h.resolver.Delete(ctx, shortener.ID(req.ID)); err != nil {
		return nil, h.toHTTPError(ctx, "delete", err)
	}

	h.publish(ctx, "deleted", h.events.Deleted(ctx, &audit.MappingDeletedEvent{
		ID:        req.ID,
		DeletedAt: time.Now().UTC(),
		Actor:     actorFromContext(ctx),
	}))

	return &NoContentResponse{}, nil
}

func (h *URLHandler) DeleteAllMappings(ctx context.Context, _ *struct{}) (*NoContentResponse, error) {
	if err := h.resolver.DeleteAll(ctx); err != nil {
		return nil, h.toHTTPError(ctx, "delete all", err)
	}

	h.publish(ctx, "purged", h.events.Purged(ctx, &audit.MappingsPurgedEvent{
		PurgedAt: time.Now().UTC(),
		Actor:    actorFromContext(ctx),
	}))

	return &NoContentResponse{}, nil
}

// publish logs a failed change event. The request has already succeeded.
func (h *URLHandler) publish(ctx context.Context, change string, err error) {
	if err == nil {
		return
	}

	h.logger.Error("failed to publish mapping event",
		zap.String("change", change),
		zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
		zap.Error(err),
	)
}

func (h *URLHandler) toHTTPError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrIDMismatch):
		return huma.Error400BadRequest("id does not match the mapping")
	case errors.Is(err, shortener.ErrMalformedURL):
		return huma.Error400BadRequest("Url is in wrong format")
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("URL Not Found")
	case errors.Is(err, shortener.ErrShortURLTaken):
		return huma.Error409Conflict("short url is already taken")
	case errors.Is(err, shortener.ErrCollisionExhausted):
		return huma.Error422UnprocessableEntity("no free short url could be generated")
	}

	h.logger.Error("mapping operation failed",
		zap.String("op", op),
		zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
		zap.Error(err),
	)

	return huma.Error500InternalServerError(fmt.Sprintf("failed to %s mapping", op))
}
