package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StudentController handles the roster pages
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

func createFormData(form *dto.StudentForm) gin.H {
	return gin.H{
		"Title":  "Nuevo alumno",
		"Action": "/alumnos/crear",
		"Form":   form,
	}
}

func editFormData(student *models.Student, form *dto.StudentForm) gin.H {
	return gin.H{
		"Title":   "Editar alumno",
		"Action":  fmt.Sprintf("/alumnos/editar/%d", student.ID),
		"Form":    form,
		"Student": student,
	}
}

// ListStudents shows the roster
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list students")
		renderFailure(ctx, "alumnos.html", gin.H{"Title": "Alumnos"}, err)
		return
	}
	render(ctx, http.StatusOK, "alumnos.html", gin.H{
		"Title":    "Alumnos",
		"Students": students,
	})
}

// GetStudent shows a single student
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		renderNotFound(ctx, apperrors.Message(apperrors.ErrStudentNotFound, ""))
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		c.handleLookupError(ctx, id, err)
		return
	}
	render(ctx, http.StatusOK, "ver_alumno.html", gin.H{
		"Title":   student.FullName(),
		"Student": student,
	})
}

// NewStudent shows the empty create form
func (c *StudentController) NewStudent(ctx *gin.Context) {
	render(ctx, http.StatusOK, "alumno_form.html", createFormData(&dto.StudentForm{}))
}

// CreateStudent handles the create form
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var form dto.StudentForm
	data := createFormData(&form)

	in, err := bindStudentForm(ctx, &form)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Invalid student form")
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	photo, err := middleware.FormFile(ctx, "foto")
	if err != nil {
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), in, photo)
	if err != nil {
		c.logger.Warn().Err(err).Str("rut", in.RUT).Msg("Failed to create student")
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	c.logger.Info().Int64("studentID", student.ID).Int64("by", middleware.CurrentAccount(ctx).ID).Msg("Student created via portal")
	redirectWithFlash(ctx, "/alumnos", middleware.FlashSuccess, "Alumno creado exitosamente")
}

// EditStudent shows the edit form pre-filled with the stored values
func (c *StudentController) EditStudent(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		renderNotFound(ctx, apperrors.Message(apperrors.ErrStudentNotFound, ""))
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		c.handleLookupError(ctx, id, err)
		return
	}

	form := dto.NewStudentForm(student)
	render(ctx, http.StatusOK, "alumno_form.html", editFormData(student, &form))
}

// UpdateStudent handles the edit form
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		renderNotFound(ctx, apperrors.Message(apperrors.ErrStudentNotFound, ""))
		return
	}

	current, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		c.handleLookupError(ctx, id, err)
		return
	}

	var form dto.StudentForm
	data := editFormData(current, &form)

	in, err := bindStudentForm(ctx, &form)
	if err != nil {
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	photo, err := middleware.FormFile(ctx, "foto")
	if err != nil {
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	if _, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, in, photo); err != nil {
		c.logger.Warn().Err(err).Int64("studentID", id).Msg("Failed to update student")
		renderFailure(ctx, "alumno_form.html", data, err)
		return
	}

	redirectWithFlash(ctx, fmt.Sprintf("/alumnos/%d", id), middleware.FlashSuccess, "Alumno actualizado exitosamente")
}

// DeleteStudent removes a student and its photo
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err == nil {
		err = c.studentService.DeleteStudent(ctx.Request.Context(), id)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			err = apperrors.ErrStudentNotFound
		} else {
			c.logger.Error().Err(err).Int64("studentID", id).Msg("Failed to delete student")
		}
		redirectWithFlash(ctx, "/alumnos", middleware.FlashError, middleware.UserMessage(err))
		return
	}

	redirectWithFlash(ctx, "/alumnos", middleware.FlashSuccess, "Alumno eliminado exitosamente")
}

// ExportStudents downloads the roster as an XLSX workbook
func (c *StudentController) ExportStudents(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.studentService.ExportStudents(ctx.Request.Context(), &buf); err != nil {
		c.logger.Error().Err(err).Msg("Failed to export students")
		redirectWithFlash(ctx, "/alumnos", middleware.FlashError, "No se pudo generar el archivo de exportación.")
		return
	}

	filename := fmt.Sprintf("alumnos_%s.xlsx", time.Now().Format("20060102"))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (c *StudentController) handleLookupError(ctx *gin.Context, id int64, err error) {
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		renderNotFound(ctx, apperrors.Message(err, "Alumno no encontrado"))
		return
	}
	c.logger.Error().Err(err).Int64("studentID", id).Msg("Failed to load student")
	render(ctx, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Message": middleware.UserMessage(err),
	})
}

// bindStudentForm binds the submitted form and parses it
func bindStudentForm(ctx *gin.Context, form *dto.StudentForm) (dto.StudentInput, error) {
	if err := middleware.BindForm(ctx, form); err != nil {
		return dto.StudentInput{}, err
	}
	return form.Input()
}
