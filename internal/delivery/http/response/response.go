package response

import (
	"go-recruiting-platform/internal/domain"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorBody is the machine-readable part of a failed response.
type ErrorBody struct {
	Kind    string   `json:"kind"`
	Details []string `json:"details,omitempty"`
}

// PageData wraps a list with its paging metadata.
type PageData struct {
	Items      interface{}       `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get(string(domain.KeyRequestID))
	idStr, _ := reqID.(string)
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Paginated sends a success response carrying one page of items.
func Paginated(c *gin.Context, code int, message string, items interface{}, pagination domain.Pagination) {
	Success(c, code, message, PageData{Items: items, Pagination: pagination})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}
