package waitlist

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/landing-api/config/router"
	apperrors "github.com/akeren/landing-api/pkg/errors"
)

// JoinRateLimit is the per-client budget for the public join endpoint.
type JoinRateLimit struct {
	Requests int
	Window   time.Duration
}

func NewPublicWaitlistController(service WaitlistService, joinLimit JoinRateLimit) *router.RESTController {
	return router.NewVersionedRESTController(
		"PublicWaitlistController",
		"v1",
		"/public/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			joinLimiter := rs.NewRateLimiter(joinLimit.Requests, joinLimit.Window)

			rs.AddPostHandler(c, joinLimiter, "join", joinWaitlistHandler(service))
			rs.AddGetHandler(c, nil, "count", countWaitlistHandler(service))
		},
	)
}

func NewAdminWaitlistController(service WaitlistService, adminGuard router.MiddlewareFunc) *router.RESTController {
	return router.NewVersionedRESTController(
		"AdminWaitlistController",
		"v1",
		"/waitlist/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "list", listWaitlistEntriesHandler(service), adminGuard)
			rs.AddPatchHandler(c, nil, ":email/status", updateWaitlistStatusHandler(service), adminGuard)
		},
	)
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		sendEmail := true
		if raw := strings.TrimSpace(ctx.Query("send_email")); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return router.BadRequestResult("send_email must be true or false", nil)
			}
			sendEmail = parsed
		}

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind join request", "error", err)
			return router.ValidationFailedResult(err, &req)
		}

		if req.IPAddress == "" {
			req.IPAddress = ctx.ClientIP()
		}
		if req.UserAgent == "" {
			req.UserAgent = ctx.Request.UserAgent()
		}

		response, err := service.Join(ctx.Request.Context(), &req, sendEmail)
		if err != nil {
			if errors.Is(err, ErrAlreadyJoined) {
				message := apperrors.GetHumanReadableMessage(err)
				return router.ErrorResult(apperrors.StatusConflict, message, JoinResponse{
					Success: false,
					Message: message,
				})
			}
			return router.ResultFromError(err)
		}

		return router.CreatedResult(response, "Waitlist entry")
	}
}

func countWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.Count(ctx.Request.Context())
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Waitlist count retrieved successfully")
	}
}

func listWaitlistEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		pagination := router.ParsePagination(ctx)

		response, err := service.ListEntries(ctx.Request.Context(), ListEntriesQuery{
			Page:   pagination.Page,
			Limit:  pagination.Limit,
			Status: strings.TrimSpace(ctx.Query("status")),
			Search: ctx.Query("search"),
		})
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Waitlist entries retrieved successfully")
	}
}

func updateWaitlistStatusHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req UpdateStatusRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind status update", "error", err)
			return router.ValidationFailedResult(err, &req)
		}

		response, err := service.UpdateStatus(ctx.Request.Context(), ctx.Param("email"), strings.TrimSpace(req.Status))
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, response.Message)
	}
}
