package handlers

import "github.com/serroba/url-mapper/internal/shortener"

// MappingBody is the wire form of a mapping.
type MappingBody struct {
	ID       int64  `doc:"Mapping id, assigned on create"  example:"1"                                    json:"id,omitempty"`
	FullURL  string `doc:"The URL to shorten"              example:"http://example.com/foo/bar"           json:"fullUrl"            minLength:"1"`
	ShortURL string `doc:"The short URL, assigned if empty" example:"http://example.com/foo/bar/Ab3xY9q" json:"shortUrl,omitempty"`
}

func toBody(m *shortener.Mapping) MappingBody {
	return MappingBody{
		ID:       int64(m.ID),
		FullURL:  m.FullURL,
		ShortURL: m.ShortURL,
	}
}

// toMapping converts a request body into a mapping. A client-supplied short
// URL with a token segment is kept as already shortened.
func (b MappingBody) toMapping() shortener.Mapping {
	return shortener.Mapping{
		ID:        shortener.ID(b.ID),
		FullURL:   b.FullURL,
		ShortURL:  b.ShortURL,
		Shortened: shortener.LooksShortened(b.ShortURL),
	}
}

// ListMappingsResponse is the response for listing every mapping.
type ListMappingsResponse struct {
	Body []MappingBody
}

// GetMappingRequest addresses a mapping by id.
type GetMappingRequest struct {
	ID int64 `doc:"Mapping id" example:"1" path:"id"`
}

// MappingResponse carries a single mapping.
type MappingResponse struct {
	Body MappingBody
}

// CreateMappingRequest is the request body for creating a mapping.
type CreateMappingRequest struct {
	Body MappingBody
}

// CreateMappingResponse is the response for a successfully created mapping.
type CreateMappingResponse struct {
	Location string `doc:"Location of the created mapping" header:"Location"`
	Body     MappingBody
}

// UpdateMappingRequest replaces the mapping with id.
type UpdateMappingRequest struct {
	ID   int64 `doc:"Mapping id" example:"1" path:"id"`
	Body MappingBody
}

// DeleteMappingRequest removes the mapping with id.
type DeleteMappingRequest struct {
	ID int64 `doc:"Mapping id" example:"1" path:"id"`
}

// ResolveForwardRequest looks up the short URL of a full URL.
type ResolveForwardRequest struct {
	FullURL string `doc:"Percent-encoded full URL" example:"http%3A%2F%2Fexample.com%2Ffoo%2Fbar" path:"fullUrl"`
}

// ResolveForwardResponse carries the short URL of a full URL.
type ResolveForwardResponse struct {
	Body struct {
		ShortURL string `doc:"The short URL" json:"shortUrl"`
	}
}

// ResolveReverseRequest looks up the full URL of a short URL.
type ResolveReverseRequest struct {
	ShortURL string `doc:"Percent-encoded short URL" example:"http%3A%2F%2Fexample.com%2FAb3xY9q" path:"shortUrl"`
}

// ResolveReverseResponse carries the full URL of a short URL.
type ResolveReverseResponse struct {
	Body struct {
		FullURL string `doc:"The full URL" json:"fullUrl"`
	}
}

// NoContentResponse is returned by operations answering 204.
type NoContentResponse struct{}
