package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

const maxAvatarBytes = 10 << 20

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
// body: { "full_name": "...", "onboarding_completed": true }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	me, err := uh.userService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// POST /api/me/avatar (multipart/form-data, field "file")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "read_file_failed", err)
		return
	}
	if len(raw) > maxAvatarBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("max %d bytes", maxAvatarBytes))
		return
	}

	me, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/users?search=&limit=&offset=
func (uh *UserHandler) ListUsers(c *gin.Context) {
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	users, err := uh.userService.ListUsers(c.Request.Context(), services.ListUsersInput{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /api/users/:id?from=&to=
func (uh *UserHandler) GetParticipant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := queryPeriod(c)
	if !ok {
		return
	}
	detail, err := uh.userService.GetParticipantDetail(c.Request.Context(), id, p)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PUT /api/users/:id/roles
// body: { "roles": ["user", "coach"] }
func (uh *UserHandler) SetRoles(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Roles []string `json:"roles"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.SetRoles(c.Request.Context(), id, req.Roles)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
