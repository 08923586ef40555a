package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the mapping routes under /api/urls.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	tags := []string{"URLs"}

	huma.Register(api, huma.Operation{
		OperationID: "list-mappings",
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List mappings",
		Tags:        tags,
	}, urlHandler.ListMappings)

	huma.Register(api, huma.Operation{
		OperationID: "get-mapping",
		Method:      http.MethodGet,
		Path:        "/api/urls/{id}",
		Summary:     "Get mapping",
		Tags:        tags,
	}, urlHandler.GetMapping)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-forward",
		Method:      http.MethodGet,
		Path:        "/api/urls/fullUrl/{fullUrl}",
		Summary:     "Resolve short URL",
		Description: "Returns the short URL of the first mapping holding the percent-encoded full URL.",
		Tags:        tags,
	}, urlHandler.ResolveForward)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-reverse",
		Method:      http.MethodGet,
		Path:        "/api/urls/shortUrl/{shortUrl}",
		Summary:     "Resolve full URL",
		Description: "Returns the full URL of the mapping holding the percent-encoded short URL.",
		Tags:        tags,
	}, urlHandler.ResolveReverse)

	huma.Register(api, huma.Operation{
		OperationID:   "create-mapping",
		Method:        http.MethodPost,
		Path:          "/api/urls",
		Summary:       "Create mapping",
		Description:   "Stores the URL and assigns it a collision-free short URL unless one is supplied.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, urlHandler.CreateMapping)

	huma.Register(api, huma.Operation{
		OperationID:   "update-mapping",
		Method:        http.MethodPut,
		Path:          "/api/urls/{id}",
		Summary:       "Update mapping",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, urlHandler.UpdateMapping)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-all-mappings",
		Method:        http.MethodDelete,
		Path:          "/api/urls",
		Summary:       "Delete all mappings",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, urlHandler.DeleteAllMappings)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-mapping",
		Method:        http.MethodDelete,
		Path:          "/api/urls/{id}",
		Summary:       "Delete mapping",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, urlHandler.DeleteMapping)
}
