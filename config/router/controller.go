package router

import (
	"fmt"
	"net/http"
	"path"

	"github.com/akeren/landing-api/pkg/ratelimit"
)

// normalizePath joins the controller mount point and a relative route into a clean absolute path.
func normalizePath(controller *RESTController, relativePath string) string {
	return path.Join("/", controller.mountPoint, relativePath)
}

func (routerService *RouterService) keyForPathAndMethod(fullPath, method string) string {
	return method + " " + fullPath
}

// bindHandlerToController panics on a duplicate route so wiring mistakes surface at startup.
func (controller *RESTController) bindHandlerToController(routerService *RouterService, fullPath, method string) {
	key := routerService.keyForPathAndMethod(fullPath, method)
	if other, taken := routerService.handlerToControllerMap[key]; taken {
		panic(fmt.Sprintf("route %s is already registered by controller %q", key, other.name))
	}

	routerService.handlerToControllerMap[key] = controller
}

func (routerService *RouterService) bindOverrideRateLimiter(key string, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}

	if _, taken := routerService.rateLimitOverrides[key]; taken {
		panic(fmt.Sprintf("a rate limiter is already registered for %s", key))
	}

	routerService.rateLimitOverrides[key] = limiter
}

func (routerService *RouterService) bindHandlerRateLimiter(fullPath, method string, limiter ratelimit.RateLimiter) {
	routerService.bindOverrideRateLimiter(routerService.keyForPathAndMethod(fullPath, method), limiter)
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		if result == nil {
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("Handler returned no result").ToJSON())
			return
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	mountPoint = path.Join("/", mountPoint)

	return &RESTController{
		name:       name,
		mountPoint: mountPoint,
		version:    "",
		prepare:    prepare,
	}
}

// APIPrefix is prepended to every versioned controller: /api/{version}/{mountPoint}.
const APIPrefix = "/api"

func NewVersionedRESTController(name, version, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	finalPath := path.Join(APIPrefix, version, mountPoint)

	return &RESTController{
		name:       name,
		mountPoint: finalPath,
		version:    version,
		prepare:    prepare,
	}
}

// RateLimitWith gives every route under the controller's mount point its own limiter.
func (controller *RESTController) RateLimitWith(routerService *RouterService, limiter ratelimit.RateLimiter) *RESTController {
	routerService.bindOverrideRateLimiter(controller.mountPoint, limiter)
	return controller
}

// addHandler registers handler behind middlewares, which run in order and may abort.
// A nil limiter leaves the route on the global budget.
func (routerService *RouterService) addHandler(
	method string,
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	route string,
	handler HandlerFunction,
	middlewares []MiddlewareFunc,
) {
	controller.handlerCount++
	fullPath := normalizePath(controller, route)
	controller.bindHandlerToController(routerService, fullPath, method)
	routerService.bindHandlerRateLimiter(fullPath, method, limiter)

	chain := make([]MiddlewareFunc, 0, len(middlewares)+1)
	chain = append(chain, middlewares...)
	chain = append(chain, createHandler(handler))
	routerService.engine.Handle(method, fullPath, chain...)

	routerService.logger.Debug("Handler registered", "controller", controller.name, "method", method, "path", fullPath)
}

func (routerService *RouterService) AddPostHandler(controller *RESTController, limiter ratelimit.RateLimiter, route string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodPost, controller, limiter, route, handler, middlewares)
}

func (routerService *RouterService) AddGetHandler(controller *RESTController, limiter ratelimit.RateLimiter, route string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodGet, controller, limiter, route, handler, middlewares)
}

func (routerService *RouterService) AddPutHandler(controller *RESTController, limiter ratelimit.RateLimiter, route string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodPut, controller, limiter, route, handler, middlewares)
}

func (routerService *RouterService) AddDeleteHandler(controller *RESTController, limiter ratelimit.RateLimiter, route string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodDelete, controller, limiter, route, handler, middlewares)
}

func (routerService *RouterService) AddPatchHandler(controller *RESTController, limiter ratelimit.RateLimiter, route string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodPatch, controller, limiter, route, handler, middlewares)
}
