package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/naps/internal/application/dto"
	"github.com/turtacn/naps/pkg/errors"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.SuccessResponse(data, RequestIDFromContext(c)))
}

func respondError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, dto.ErrorResponse(appErr, RequestIDFromContext(c)))
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse(
		errors.ErrInvalidRequest(err.Error()), RequestIDFromContext(c)))
}
