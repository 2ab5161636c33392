package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Helpers for the server-rendered surface. Every failure path produces a
// concrete response: 4xx pages for caller mistakes, a 5xx page for
// persistence failures, never a hung request.

// ErrorPage renders the shared error template with the given status.
func ErrorPage(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}

// BadRequest renders a 400 page.
func BadRequest(c *gin.Context, message string) {
	ErrorPage(c, http.StatusBadRequest, message)
}

// Forbidden renders a 403 page.
func Forbidden(c *gin.Context, message string) {
	ErrorPage(c, http.StatusForbidden, message)
}

// NotFound renders a 404 page.
func NotFound(c *gin.Context) {
	ErrorPage(c, http.StatusNotFound, "not found")
}

// MethodNotAllowed renders a 405 page.
func MethodNotAllowed(c *gin.Context) {
	ErrorPage(c, http.StatusMethodNotAllowed, "method not allowed")
}

// InternalError renders a 500 page. The underlying error goes to the log,
// not to the caller.
func InternalError(c *gin.Context) {
	ErrorPage(c, http.StatusInternalServerError, "something went wrong")
}

// Redirect issues a 302 to the given location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
