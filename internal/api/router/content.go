package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/apperr"
	"github.com/DjordjeVuckovic/content-query/internal/content"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/labstack/echo/v4"
)

type ContentRouter struct {
	e       *echo.Echo
	service *content.Service
}

func NewContentRouter(e *echo.Echo, service *content.Service) *ContentRouter {
	return &ContentRouter{
		e:       e,
		service: service,
	}
}

func (r *ContentRouter) Bind() {
	r.e.GET("/content/*", r.frontendHandler)
	r.e.GET("/backend/content/*", r.backendHandler)

	records := r.e.Group("/records")
	records.POST("/:type", r.createHandler)
	records.PUT("/:type/:id", r.updateHandler)
	records.DELETE("/:type/:id", r.deleteHandler)
	records.POST("/:type/:id/publish", r.publishHandler)
}

type savedResponse struct {
	ID string `json:"id"`
}

type publishedResponse struct {
	ID       string `json:"id"`
	RemoteID string `json:"remote_id"`
}

// frontendHandler godoc
// @Summary Query published content
// @Description Runs a textquery such as "page/12", "(entries,pages)/search/5" or "events/latest/3". Only published records are returned unless a status filter is given.
// @Tags content
// @Produce json
// @Param textquery path string true "Text query"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param order query string false "Order, e.g. -datepublish"
// @Param filter query string false "Free-text search"
// @Success 200 {object} content.Result
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /content/{textquery} [get]
func (r *ContentRouter) frontendHandler(c echo.Context) error {
	return r.query(c, true)
}

// backendHandler godoc
// @Summary Query content in any status
// @Tags content
// @Produce json
// @Param textquery path string true "Text query"
// @Success 200 {object} content.Result
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /backend/content/{textquery} [get]
func (r *ContentRouter) backendHandler(c echo.Context) error {
	return r.query(c, false)
}

func (r *ContentRouter) query(c echo.Context, frontend bool) error {
	textQuery := strings.Trim(c.Param("*"), "/")
	if textQuery == "" {
		return apperr.NewValidation("is required").ForParam("textquery")
	}

	res, err := r.service.GetContent(c.Request().Context(), query.Request{
		TextQuery: textQuery,
		Params:    query.ParseValues(c.QueryParams()),
		Frontend:  frontend,
	})
	if err != nil {
		return asValidation("invalid content query", err)
	}

	return c.JSON(http.StatusOK, res)
}

// createHandler godoc
// @Summary Create a record
// @Tags records
// @Accept json
// @Produce json
// @Param type path string true "Content type"
// @Param record body map[string]interface{} true "Field values"
// @Success 201 {object} savedResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /records/{type} [post]
func (r *ContentRouter) createHandler(c echo.Context) error {
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	delete(values, "id")

	id, err := r.service.Save(c.Request().Context(), c.Param("type"), values)
	if err != nil {
		return asValidation("invalid record", err)
	}
	return c.JSON(http.StatusCreated, savedResponse{ID: id})
}

// updateHandler godoc
// @Summary Update a record
// @Description Sync content types fall back to creating the record when it does not exist.
// @Tags records
// @Accept json
// @Produce json
// @Param type path string true "Content type"
// @Param id path string true "Record id"
// @Param record body map[string]interface{} true "Field values"
// @Success 200 {object} savedResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /records/{type}/{id} [put]
func (r *ContentRouter) updateHandler(c echo.Context) error {
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	values["id"] = c.Param("id")

	id, err := r.service.Save(c.Request().Context(), c.Param("type"), values)
	if err != nil {
		return asValidation("invalid record", err)
	}
	return c.JSON(http.StatusOK, savedResponse{ID: id})
}

// deleteHandler godoc
// @Summary Delete a record
// @Tags records
// @Param type path string true "Content type"
// @Param id path string true "Record id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /records/{type}/{id} [delete]
func (r *ContentRouter) deleteHandler(c echo.Context) error {
	if err := r.service.Delete(c.Request().Context(), c.Param("type"), c.Param("id")); err != nil {
		return asValidation("invalid record", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishHandler godoc
// @Summary Publish a sync record to its remote collection
// @Tags records
// @Produce json
// @Param type path string true "Content type"
// @Param id path string true "Record id"
// @Success 200 {object} publishedResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /records/{type}/{id}/publish [post]
func (r *ContentRouter) publishHandler(c echo.Context) error {
	id := c.Param("id")
	remoteID, err := r.service.Publish(c.Request().Context(), c.Param("type"), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publishedResponse{ID: id, RemoteID: remoteID})
}

// bindValues reads the JSON body only; path and query parameters stay out of the record.
func bindValues(c echo.Context) (storage.Row, error) {
	values := storage.Row{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &values); err != nil {
		return nil, apperr.NewValidationWrap("invalid request body", err).ForParam("body")
	}
	return values, nil
}

// asValidation marks errors caused by the request itself as validation errors.
func asValidation(msg string, err error) error {
	if errors.Is(err, query.ErrInvalidQuery) || errors.Is(err, query.ErrInvalidParameter) {
		return apperr.NewValidationWrap(msg, err)
	}
	return err
}
