package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers as long as the server process is alive.
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate answers 200 when the auth middleware accepted the caller's
// cookie.
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
