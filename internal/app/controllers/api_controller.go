package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// APIController serves the read-only JSON roster
type APIController struct {
	studentService services.StudentService
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAPIController creates a new APIController
func NewAPIController(studentService services.StudentService, logger zerolog.Logger) *APIController {
	return &APIController{
		studentService: studentService,
		logger:         logger,
		now:            time.Now,
	}
}

// ListStudents returns every student as a JSON array
func (c *APIController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStudentResponses(students, c.now()))
}

// GetStudent returns one student as JSON
func (c *APIController) GetStudent(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.ErrStudentNotFound)
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStudentResponse(student, c.now()))
}
