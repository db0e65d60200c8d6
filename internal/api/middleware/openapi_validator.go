package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/api/openapi"
)

// MustOpenAPIValidator creates the request validator middleware and
// panics on setup failure. Called once during router construction.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator validates incoming requests against the embedded
// API contract. Paths the contract does not know pass through untouched.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	basePath = normalizeBasePath(basePath)

	return func(c *gin.Context) {
		route, pathParams, routeErr := findRoute(router, c.Request, basePath)
		if routeErr != nil {
			if isPathNotFoundError(routeErr) {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "OPENAPI_ROUTE_INVALID",
				"message": routeErr.Error(),
			})
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				// JWT is handled by dedicated middleware in the chain.
				AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error {
					return nil
				},
			},
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "OPENAPI_REQUEST_INVALID",
				"message": err.Error(),
			})
			return
		}

		c.Next()
	}, nil
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	return "/" + strings.Trim(basePath, "/")
}

// findRoute resolves the request against the contract, trying the raw
// path first and then the path with the base prefix stripped.
func findRoute(router routers.Router, req *http.Request, basePath string) (*routers.Route, map[string]string, error) {
	route, pathParams, err := router.FindRoute(req)
	if err == nil || !isPathNotFoundError(err) {
		return route, pathParams, err
	}

	if basePath != "" && strings.HasPrefix(req.URL.Path, basePath+"/") {
		origPath := req.URL.Path
		req.URL.Path = strings.TrimPrefix(origPath, basePath)
		route, pathParams, err = router.FindRoute(req)
		req.URL.Path = origPath
	}
	return route, pathParams, err
}

func isPathNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if err == routers.ErrPathNotFound {
		return true
	}
	return strings.Contains(err.Error(), routers.ErrPathNotFound.Error())
}
