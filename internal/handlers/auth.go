package handlers

import (
	"net/http"

	"microblog/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both register and login.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// internalError is the single formatting step for unexpected failures:
// detail goes to the log, the client sees the generic taxonomy message.
func (h *Handler) internalError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	appErr := apperr.From(err)
	c.AbortWithStatusJSON(appErr.Code, appErr)
}

// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  service.AuthResult  "user + access_token, or field errors"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  apperr.Error
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.internalError(c, "register_failed", err, "username", input.Username)
		return
	}
	// Field errors (username taken) ride inside the response body.
	c.JSON(http.StatusOK, res)
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  service.AuthResult  "user + access_token, or field errors"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  apperr.Error
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.internalError(c, "login_failed", err, "username", input.Username)
		return
	}
	c.JSON(http.StatusOK, res)
}
