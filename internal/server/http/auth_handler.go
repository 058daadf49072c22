package http

import (
	"net/http"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	Refreshed *bool  `json:"refreshed,omitempty"`
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "username and password are required"})
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	token, err := s.sessions.Login(c.Request.Context(), req.Username, password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "token is required"})
		return
	}

	token, refreshed, err := s.sessions.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token, Refreshed: &refreshed})
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), c.GetString(ctxTokenKey)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
