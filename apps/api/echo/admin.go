package echoapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/resource"
)

type adminApi struct {
	opts *Options
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{opts: opts}

	ag := g.Group("/admin", jwt, adminMiddleware())

	rg := ag.Group("/resources")
	rg.GET("", api.queryResources)
	rg.POST("", api.createResource)
	rg.GET("/trash", api.queryTrash)
	rg.GET("/:id", api.retrieveResource)
	rg.PUT("/:id", api.updateResource)
	rg.DELETE("/:id", api.trashResource)
	rg.POST("/:id/restore", api.restoreResource)
	rg.DELETE("/:id/purge", api.purgeResource)
	rg.GET("/:id/versions", api.queryVersions)

	ag.POST("/uploads", api.upload)
	ag.POST("/announcements", api.announce)
	ag.GET("/audit-logs", api.queryAuditLog)
	ag.GET("/stats", api.stats)
}

// Handlers

func (api *adminApi) queryResources(ctx echo.Context) error {
	resources, err := api.opts.ResourceSvc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *adminApi) queryTrash(ctx echo.Context) error {
	resources, err := api.opts.ResourceSvc.QueryTrashed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying trash")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *adminApi) createResource(ctx echo.Context) error {
	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.opts.ResourceSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *adminApi) retrieveResource(ctx echo.Context) error {
	res, err := api.opts.ResourceSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) updateResource(ctx echo.Context) error {
	var data resource.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.opts.ResourceSvc.Update(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) trashResource(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.opts.ResourceSvc.SoftDelete(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "trashing resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) restoreResource(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.opts.ResourceSvc.Restore(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "restoring resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) purgeResource(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	res, err := api.opts.ResourceSvc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving resource")
	}

	if err = api.opts.ResourceSvc.Purge(rctx, claims.Subject, res.ID); err != nil {
		return errors.Wrap(err, "purging resource")
	}
	api.deleteStoredFile(rctx, res.FileURL)
	return ctx.NoContent(http.StatusNoContent)
}

// deleteStoredFile removes the backing object of a purged resource. Only
// URLs produced by the FileStore carry a derivable key; external URLs are
// left alone. A failed delete is logged, the purge stands.
func (api *adminApi) deleteStoredFile(ctx context.Context, fileURL string) {
	if api.opts.FileStore == nil {
		return
	}
	i := strings.Index(fileURL, "/resources/")
	if i < 0 {
		return
	}
	key := fileURL[i+1:]
	if err := api.opts.FileStore.Delete(ctx, key); err != nil && api.opts.Logger != nil {
		api.opts.Logger.Warn("deleting stored file "+key, err)
	}
}

func (api *adminApi) queryVersions(ctx echo.Context) error {
	versions, err := api.opts.ResourceSvc.Versions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying versions")
	}
	if versions == nil {
		versions = []resource.Version{}
	}
	return ctx.JSON(http.StatusOK, versions)
}

// upload receives a multipart file and stores it in the configured FileStore.
// The returned URL and inferred file type feed a subsequent resource create
// or update call.
func (api *adminApi) upload(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	f, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = f.Close() }()

	result, err := api.opts.FileStore.Upload(
		ctx.Request().Context(),
		fileHdr.Filename,
		fileHdr.Header.Get("Content-Type"),
		fileHdr.Size,
		f,
	)
	if err != nil {
		return errors.Wrap(err, "storing upload")
	}
	return ctx.JSON(http.StatusCreated, result)
}

func (api *adminApi) announce(ctx echo.Context) error {
	var data AnnouncementRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnnouncementRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sent, err := api.opts.NotificationSvc.Announce(ctx.Request().Context(), data.Title, data.Message)
	if err != nil {
		return errors.Wrap(err, "sending announcement")
	}

	api.opts.AuditSvc.Log(ctx.Request().Context(), claims.Subject, audit.ActionAnnouncementSent, "announcement", "",
		map[string]interface{}{"title": data.Title, "recipients": sent})

	return ctx.JSON(http.StatusOK, AnnouncementResponse{Recipients: sent})
}

func (api *adminApi) queryAuditLog(ctx echo.Context) error {
	entries, err := api.opts.AuditSvc.Recent(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying audit log")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *adminApi) stats(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	users, err := api.opts.UserSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	resources, err := api.opts.ResourceSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting resources")
	}
	downloads, err := api.opts.ActivitySvc.CountDownloads(rctx)
	if err != nil {
		return errors.Wrap(err, "counting downloads")
	}

	return ctx.JSON(http.StatusOK, StatsResponse{
		Users:     users,
		Resources: resources,
		Downloads: downloads,
	})
}

type (
	AnnouncementRequest struct {
		Title   string `json:"title" validate:"required,notblank,max=255"`
		Message string `json:"message" validate:"required,notblank"`
	}

	AnnouncementResponse struct {
		Recipients int `json:"recipients"`
	}

	StatsResponse struct {
		Users     int `json:"users"`
		Resources int `json:"resources"`
		Downloads int `json:"downloads"`
	}
)

func (ar *AnnouncementRequest) Validate() error {
	ar.Title = core.CleanString(ar.Title)
	ar.Message = core.CleanString(ar.Message)
	return core.Validate.Struct(ar)
}
