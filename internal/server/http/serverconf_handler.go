package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/gin-gonic/gin"
)

// maxNodeBody caps POSTed node values.
const maxNodeBody = 1 << 20

type nodeResponse struct {
	Value  json.RawMessage `json:"value"`
	Status string          `json:"status"`
}

func serverIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("serverId"))
	if err != nil {
		return 0, fmt.Errorf("%w: server id must be an integer", common.ErrorValidation)
	}
	return id, nil
}

func (s *HTTPServer) listServers(c *gin.Context) {
	c.JSON(http.StatusOK, s.nodes.Servers())
}

func (s *HTTPServer) getNode(c *gin.Context) {
	serverID, err := serverIDParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	v, err := s.nodes.Get(c.Request.Context(), serverID, c.Param("icon"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nodeResponse{Value: v.Value, Status: v.Status})
}

func (s *HTTPServer) postNode(c *gin.Context) {
	serverID, err := serverIDParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNodeBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody{Error: "body too large"})
		return
	}

	if err := s.nodes.Put(c.Request.Context(), serverID, c.Param("icon"), body); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
