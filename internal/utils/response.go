package utils

import (
	"github.com/gin-gonic/gin"
)

// SendDataResponse sends a standardized data response
func SendDataResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{"data": data})
}

// SendMessageResponse sends a standardized response with a confirmation message
func SendMessageResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(statusCode, body)
}

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
