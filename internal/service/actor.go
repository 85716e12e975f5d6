package service

import (
	"context"
	"errors"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
)

var ErrForbidden = errors.New("not allowed to access this resource")

// Actor 发起请求的用户
type Actor struct {
	UserID string
	Role   string
}

// Is 是否为给定角色之一
func (a Actor) Is(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// canManage 管理员或授课教师可管理课程
func (a Actor) canManage(c *model.Course) bool {
	if a.Is(model.RoleAdmin) {
		return true
	}
	return a.Is(model.RoleInstructor) && c.InstructorID != nil && *c.InstructorID == a.UserID
}

// loadCourse 查询课程并校验访问权限。
// manage=false 时督导可查看全部、学生需已选课。
func loadCourse(ctx context.Context, repo *repository.Repository, actor Actor, courseID string, manage bool) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if actor.canManage(course) {
		return course, nil
	}
	if manage {
		return nil, ErrForbidden
	}

	switch actor.Role {
	case model.RoleSupervisor:
		return course, nil
	case model.RoleStudent:
		ok, err := repo.Enrollment.Exists(ctx, courseID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if ok {
			return course, nil
		}
	}
	return nil, ErrForbidden
}
