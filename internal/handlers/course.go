package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/services"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// GET /courses
func (h *CourseHandler) ListUserCourses(c *gin.Context) {
	courses, err := h.courseService.GetUserCourses(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "courses_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

// GET /courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := h.courseService.GetCourse(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	RespondOK(c, course)
}

// POST /courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Level       string   `json:"level"`
		Subject     string   `json:"subject"`
		Modules     []string `json:"modules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Title == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errMissingField("title"))
		return
	}
	course := &types.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Subject:     req.Subject,
	}
	modules := make([]*types.CourseModule, 0, len(req.Modules))
	for _, title := range req.Modules {
		modules = append(modules, &types.CourseModule{Title: title})
	}
	created, err := h.courseService.CreateCourse(c.Request.Context(), course, modules)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "course_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /courses/:id/modules
func (h *CourseHandler) ListModules(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	modules, err := h.courseService.ListModules(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}
