package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every response. Data is omitted unless the
// operation succeeded and produces a value.
type Envelope struct {
	WasSuccess bool   `json:"was_success"`
	Data       any    `json:"data,omitempty"`
	Msg        string `json:"msg"`
}

func failure(msg string) Envelope {
	return Envelope{WasSuccess: false, Msg: msg}
}

func succeed(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Envelope{WasSuccess: true, Data: data, Msg: msg})
}
