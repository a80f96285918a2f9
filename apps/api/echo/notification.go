package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/me/notifications", jwt)
	ng.GET("", api.recent)
	ng.POST("/read", api.markRead)
	ng.POST("/read-all", api.markAllRead)
	ng.GET("/stream", api.stream)
}

// Handlers

func (api *notificationApi) recent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ns, err := api.svc.Recent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data MarkReadRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkReadRequest")
	}
	if len(data.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}

	if err = api.svc.MarkRead(ctx.Request().Context(), claims.Subject, data.IDs...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Notifications marked as read."})
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.MarkAllRead(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All notifications marked as read."})
}

// stream pushes the authenticated user's notifications over server-sent
// events until the client disconnects.
func (api *notificationApi) stream(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	sub, err := api.svc.Stream(rctx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "subscribing to notifications")
	}
	defer func() { _ = sub.Close() }()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-rctx.Done():
			return nil
		case n, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if _, err = fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}
