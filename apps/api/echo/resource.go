package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/resource"
)

type resourceApi struct {
	svc         *resource.Service
	activitySvc *activity.Service
}

func registerResourceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *resource.Service, activitySvc *activity.Service) {
	api := resourceApi{svc: svc, activitySvc: activitySvc}

	rg := g.Group("/resources")

	// un-authed endpoints: the public catalog
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.GET("/:id/comments", api.queryComments)

	// authed endpoints
	ag := rg.Group("", jwt)
	ag.POST("/:id/bookmark", api.toggleBookmark)
	ag.POST("/:id/comments", api.createComment)
	ag.POST("/:id/download", api.recordDownload)

	mg := g.Group("/me", jwt)
	mg.GET("/bookmarks", api.queryBookmarks)
	mg.GET("/downloads", api.queryDownloads)

	g.DELETE("/comments/:id", api.destroyComment, jwt)
}

// Handlers

func (api *resourceApi) query(ctx echo.Context) error {
	filter := new(resource.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []resource.Resource{})
	}
	filter.PublicOnly = true

	resources, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	res, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting resource")
	}
	if !res.IsPublic() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, res)
}

// getPublicResource loads the target resource and hides non-public ones.
func (api *resourceApi) getPublicResource(ctx echo.Context) (resource.Resource, error) {
	res, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "getting resource")
	}
	if !res.IsPublic() {
		return resource.Resource{}, errHttpNotFound
	}
	return res, nil
}

func (api *resourceApi) toggleBookmark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.getPublicResource(ctx)
	if err != nil {
		return err
	}

	bookmarked, err := api.activitySvc.ToggleBookmark(ctx.Request().Context(), claims.Subject, res.ID)
	if err != nil {
		return errors.Wrap(err, "toggling bookmark")
	}
	return ctx.JSON(http.StatusOK, BookmarkResponse{Bookmarked: bookmarked})
}

func (api *resourceApi) queryBookmarks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	bms, err := api.activitySvc.Bookmarks(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying bookmarks")
	}
	if bms == nil {
		bms = []activity.Bookmark{}
	}
	return ctx.JSON(http.StatusOK, bms)
}

func (api *resourceApi) createComment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.getPublicResource(ctx)
	if err != nil {
		return err
	}

	var data activity.NewComment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}

	cmt, err := api.activitySvc.AddComment(ctx.Request().Context(), claims.Subject, res.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *resourceApi) queryComments(ctx echo.Context) error {
	res, err := api.getPublicResource(ctx)
	if err != nil {
		return err
	}

	cmts, err := api.activitySvc.Comments(ctx.Request().Context(), res.ID)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if cmts == nil {
		cmts = []activity.Comment{}
	}
	return ctx.JSON(http.StatusOK, cmts)
}

func (api *resourceApi) destroyComment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.activitySvc.DeleteComment(ctx.Request().Context(), ctx.Param("id"), claims.Subject, claims.IsAdmin); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) recordDownload(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.getPublicResource(ctx)
	if err != nil {
		return err
	}

	dl, err := api.activitySvc.RecordDownload(ctx.Request().Context(), claims.Subject, res.ID)
	if err != nil {
		return errors.Wrap(err, "recording download")
	}
	return ctx.JSON(http.StatusCreated, dl)
}

func (api *resourceApi) queryDownloads(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	dls, err := api.activitySvc.Downloads(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying downloads")
	}
	if dls == nil {
		dls = []activity.Download{}
	}
	return ctx.JSON(http.StatusOK, dls)
}

type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}
