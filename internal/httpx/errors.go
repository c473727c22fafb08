package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

const (
	msgItemNotFound = "Item not found"
	msgNotFound     = "Not found"
)

// Fail records err on the context and stops the handler chain. ErrorHandler
// turns it into a response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err).SetMeta(string(debug.Stack()))
	c.Abort()
}

// ErrorHandler maps the last error pushed by a handler to a status and JSON
// body. Stack traces are only exposed when dev is true.
func ErrorHandler(log *zap.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ge := c.Errors.Last()
		if errors.Is(ge.Err, item.ErrNotFound) {
			c.JSON(http.StatusNotFound, item.HTTPError{Error: msgItemNotFound})
			return
		}

		log.Error("request failed",
			zap.String("rid", RID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(ge.Err),
		)
		body := item.ServerError{Message: ge.Err.Error()}
		if stack, ok := ge.Meta.(string); ok && dev {
			body.Stack = stack
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// Recovery converts a panic into the same 500 body ErrorHandler writes.
func Recovery(log *zap.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			stack := string(debug.Stack())
			log.Error("panic recovered",
				zap.String("rid", RID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
			)
			body := item.ServerError{Message: fmt.Sprint(r)}
			if dev {
				body.Stack = stack
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

// NotFound answers routes that matched nothing.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, item.HTTPError{Error: msgNotFound})
}
