package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// @Summary      Current user
// @Tags         user
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "user (null if the record is gone)"
// @Failure      401  {object}  apperr.Error
// @Failure      500  {object}  apperr.Error
// @Router       /api/v1/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	identity, _ := currentIdentity(c)

	u, err := h.services.GetSelf(c.Request.Context(), identity.Username)
	if err != nil {
		h.internalError(c, "get_self_failed", err, "username", identity.Username)
		return
	}
	// u is nil when the record was deleted after token issuance.
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// @Summary      Change password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "New password"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  apperr.Error
// @Failure      500   {object}  apperr.Error
// @Router       /api/v1/me/password [put]
// @Security     BearerAuth
func (h *Handler) changePassword(c *gin.Context) {
	var input changePasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	identity, _ := currentIdentity(c)
	ok, err := h.services.ChangePassword(c.Request.Context(), identity.Username, input.Password)
	if err != nil {
		h.internalError(c, "change_password_failed", err, "username", identity.Username)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}
