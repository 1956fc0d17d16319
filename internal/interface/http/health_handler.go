package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shubhamprakash681/truefeed/pkg/response"
)

func Healthcheck(c *gin.Context) {
	response.Success[any](c, http.StatusOK, nil, "API is working", nil)
}
