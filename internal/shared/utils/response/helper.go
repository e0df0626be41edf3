package response

import "github.com/gin-gonic/gin"

func RespondError(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Detail: detail})
}
