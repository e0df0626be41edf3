package activities

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mergington/internal/shared/utils/response"
	"mergington/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	logger    *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		logger:    log,
	}
}

// GetActivities godoc
// @Summary List all activities
// @Produce json
// @Success 200 {object} map[string]Activity
// @Router /activities [get]
func (c *Controller) GetActivities(ctx *gin.Context) {
	catalog, err := c.service.ListActivities(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, catalog)
}

// Signup godoc
// @Summary Sign a student up for an activity
// @Produce json
// @Param name path string true "Activity name"
// @Param email query string true "Student email"
// @Success 200 {object} SignupResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /activities/{name}/signup [post]
func (c *Controller) Signup(ctx *gin.Context) {
	var path ActivityPath
	var query SignupQuery
	if err := ctx.ShouldBindUri(&path); err != nil {
		response.RespondError(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondError(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := c.validate(&path, &query); err != nil {
		response.RespondError(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp, err := c.service.Signup(ctx.Request.Context(), path.Name, query.Email)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Unregister godoc
// @Summary Remove a student from an activity
// @Produce json
// @Param name path string true "Activity name"
// @Param email path string true "Student email"
// @Success 200 {object} UnregisterResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /activities/{name}/unregister/{email} [delete]
func (c *Controller) Unregister(ctx *gin.Context) {
	var path UnregisterPath
	if err := ctx.ShouldBindUri(&path); err != nil {
		response.RespondError(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := c.validate(&path); err != nil {
		response.RespondError(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp, err := c.service.Unregister(ctx.Request.Context(), path.Name, path.Email)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// validate runs struct validation and flattens failures into one detail line
func (c *Controller) validate(targets ...interface{}) error {
	var problems []string
	for _, target := range targets {
		err := c.validator.Struct(target)
		if err == nil {
			continue
		}
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		for _, fe := range validationErrs {
			problems = append(problems, fmt.Sprintf("%s: field %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrActivityNotFound), errors.Is(err, ErrParticipantNotFound):
		response.RespondError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadySignedUp), errors.Is(err, ErrActivityFull):
		response.RespondError(ctx, http.StatusBadRequest, err.Error())
	default:
		c.logger.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
	}
}
