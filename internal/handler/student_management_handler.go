package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// StudentManagementHandler handles admin operations on student accounts.
type StudentManagementHandler struct {
	userService    *service.UserService
	authService    *service.AuthService
	attemptService *service.AttemptService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(
	userService *service.UserService,
	authService *service.AuthService,
	attemptService *service.AttemptService,
) *StudentManagementHandler {
	return &StudentManagementHandler{
		userService:    userService,
		authService:    authService,
		attemptService: attemptService,
	}
}

// ListStudents godoc
// GET /api/v1/admin/students
func (h *StudentManagementHandler) ListStudents(c *gin.Context) {
	students, err := h.userService.ListStudents(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:student_id
// Removes the account and its results, revokes any live session, and
// discards any attempt still open under it. Admin accounts are not
// deletable through this endpoint.
func (h *StudentManagementHandler) DeleteStudent(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || studentID <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.userService.DeleteStudent(c.Request.Context(), studentID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Best effort: the account is already gone.
	_ = h.attemptService.Abandon(c.Request.Context(), studentID)
	_ = h.authService.ClearSession(c.Request.Context(), studentID)

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
