package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/questionbot-backend/internal/platform/apierr"
)

// ErrorEnvelope is the error body clients see: a human-readable detail plus a
// stable machine code.
type ErrorEnvelope struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// RespondError renders err with its apierr status. Unclassified errors become a
// 500 with a generic detail; the cause stays in the gin error list for logging.
func RespondError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	if e, ok := apierr.As(err); ok {
		status := e.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, ErrorEnvelope{Detail: e.Error(), Code: e.Code})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{
		Detail: "internal server error",
		Code:   "internal",
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
