package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/requestdata"
	"github.com/brightpath/brightpath-backend/internal/types"
)

type CourseService interface {
	GetUserCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	CreateCourse(ctx context.Context, course *types.Course, modules []*types.CourseModule) (*types.Course, error)
	ListModules(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
}

func NewCourseService(db *gorm.DB, log *logger.Logger, courseRepo repos.CourseRepo, moduleRepo repos.CourseModuleRepo) CourseService {
	return &courseService{
		db:         db,
		log:        log.With("service", "CourseService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
	}
}

func (cs *courseService) GetUserCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	return cs.courseRepo.GetByUserID(ctx, tx, rd.UserID)
}

func (cs *courseService) GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 || courses[0].UserID != rd.UserID {
		return nil, fmt.Errorf("course not found")
	}
	return courses[0], nil
}

// CreateCourse persists the course with its syllabus document and the
// relational module mirror in one transaction.
func (cs *courseService) CreateCourse(ctx context.Context, course *types.Course, modules []*types.CourseModule) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	course.ID = uuid.New()
	course.UserID = rd.UserID

	syllabus := make([]types.SyllabusModule, 0, len(modules))
	for i, m := range modules {
		m.ID = uuid.New()
		m.CourseID = course.ID
		m.Position = i
		syllabus = append(syllabus, types.SyllabusModule{
			ID:    m.ID.String(),
			Title: m.Title,
		})
	}
	raw, err := json.Marshal(syllabus)
	if err != nil {
		return nil, fmt.Errorf("failed to encode syllabus: %w", err)
	}
	course.Syllabus = raw

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.courseRepo.Create(ctx, tx, []*types.Course{course}); err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}
		if _, err := cs.moduleRepo.Create(ctx, tx, modules); err != nil {
			return fmt.Errorf("failed to create course modules: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *courseService) ListModules(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
	if _, err := cs.GetCourse(ctx, tx, courseID); err != nil {
		return nil, err
	}
	return cs.moduleRepo.GetByCourseID(ctx, tx, courseID)
}
