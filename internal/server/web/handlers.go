package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filehub/internal/common"
	"github.com/dmitrijs2005/filehub/internal/server/identity"
)

// userView is the JSON shape of a user exposed over HTTP. The stored
// credential and session token never leave the server.
type userView struct {
	Handle      string   `json:"handle"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Email       string   `json:"email"`
	Groups      []string `json:"groups"`
	Admin       bool     `json:"admin"`
	Followers   []string `json:"followers,omitempty"`
	Friends     []string `json:"friends,omitempty"`
}

func viewOf(u *identity.User) userView {
	return userView{
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
		Description: u.Description,
		Email:       u.Email,
		Groups:      u.Groups,
		Admin:       u.IsAdmin(),
		Followers:   u.Followers,
		Friends:     u.Friends,
	}
}

type loginRequest struct {
	Handle     string `json:"handle" binding:"required"`
	Credential string `json:"credential"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	token, err := s.manager.Login(ctx, req.Handle, req.Credential)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid handle or credential"})
			return
		}
		s.logger.Error(ctx, "login failed", "handle", req.Handle, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := s.manager.RecordAddress(ctx, req.Handle, c.ClientIP()); err != nil {
		// The session is already established; losing one history entry is
		// not worth failing the request.
		s.logger.Warn(ctx, "recording client address failed", "handle", req.Handle, "error", err)
	}

	c.SetCookie(common.SessionCookieName, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) logout(c *gin.Context) {
	u := currentUser(c)

	if err := s.manager.Logout(c.Request.Context(), u.Handle); err != nil {
		s.logger.Error(c.Request.Context(), "logout failed", "handle", u.Handle, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.SetCookie(common.SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(currentUser(c)))
}

func (s *Server) displayName(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"id": id, "name": s.manager.ResolveDisplayName(id)})
}

func (s *Server) listUsers(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handles": s.manager.Handles()})
}

type createUserRequest struct {
	Handle      string `json:"handle" binding:"required"`
	Credential  string `json:"credential"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

func (s *Server) createUser(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u := identity.NewUser(req.Handle)
	u.DisplayName = req.DisplayName
	u.Description = req.Description
	u.Email = req.Email

	err := s.manager.CreateUser(c.Request.Context(), u, req.Credential)
	switch {
	case errors.Is(err, common.ErrorInvalidHandle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error(c.Request.Context(), "creating user failed", "handle", req.Handle, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusCreated, viewOf(s.manager.LookupByHandle(req.Handle)))
	}
}

type createGroupRequest struct {
	ID          string `json:"id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

func (s *Server) createGroup(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := s.manager.AddGroup(c.Request.Context(), req.ID, req.DisplayName); err != nil {
		s.logger.Error(c.Request.Context(), "creating group failed", "id", req.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "name": req.DisplayName})
}
