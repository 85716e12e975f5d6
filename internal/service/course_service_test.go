package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// courseFixture 一名教师、两名学生、一门课程（s1 已选课）
func courseFixture() (*memStore, CourseService) {
	store := newMemStore()
	store.addProfile("inst-1", "omar@kku.edu.sa", model.RoleInstructor)
	store.addProfile("inst-2", "lina@kku.edu.sa", model.RoleInstructor)
	store.addProfile("s1", "s1@kku.edu.sa", model.RoleStudent)
	store.addProfile("s2", "s2@kku.edu.sa", model.RoleStudent)
	store.addProfile("sup-1", "sup@kku.edu.sa", model.RoleSupervisor)
	store.addCourse("c1", "CS101", "inst-1")
	store.enroll("s1", "c1")
	return store, NewCourseService(newMockRepository(store), nop)
}

var (
	instructorActor = Actor{UserID: "inst-1", Role: model.RoleInstructor}
	otherInstructor = Actor{UserID: "inst-2", Role: model.RoleInstructor}
	adminActor      = Actor{UserID: "admin-1", Role: model.RoleAdmin}
	supervisorActor = Actor{UserID: "sup-1", Role: model.RoleSupervisor}
	studentActor    = Actor{UserID: "s1", Role: model.RoleStudent}
	outsiderStudent = Actor{UserID: "s2", Role: model.RoleStudent}
)

func TestCourseCreate_InstructorOwnsCourse(t *testing.T) {
	_, svc := courseFixture()
	resp, err := svc.Create(context.Background(), instructorActor, &dto.CreateCourseRequest{
		Code: " cs210 ", Name: "Data Structures", InstructorID: "inst-2",
	})
	if err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	if resp.Code != "CS210" {
		t.Errorf("期望课程编码大写 CS210，实际=%s", resp.Code)
	}
	if resp.InstructorID != "inst-1" {
		t.Errorf("教师开课应归属自己，实际=%s", resp.InstructorID)
	}
}

func TestCourseCreate_Rejections(t *testing.T) {
	_, svc := courseFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminActor, &dto.CreateCourseRequest{Code: "cs101", Name: "Dup"}); !errors.Is(err, ErrCourseCodeExists) {
		t.Errorf("编码重复期望 ErrCourseCodeExists，实际=%v", err)
	}
	if _, err := svc.Create(ctx, adminActor, &dto.CreateCourseRequest{Code: "X1", Name: "Bad", InstructorID: "s1"}); !errors.Is(err, ErrInstructorInvalid) {
		t.Errorf("指定学生为教师期望 ErrInstructorInvalid，实际=%v", err)
	}
	if _, err := svc.Create(ctx, adminActor, &dto.CreateCourseRequest{Code: "X2", Name: "Bad", InstructorID: "ghost"}); !errors.Is(err, ErrInstructorInvalid) {
		t.Errorf("教师不存在期望 ErrInstructorInvalid，实际=%v", err)
	}
}

func TestCourseEnroll(t *testing.T) {
	_, svc := courseFixture()
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, otherInstructor, "c1", "s2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("非授课教师选课期望 ErrForbidden，实际=%v", err)
	}
	if _, err := svc.Enroll(ctx, instructorActor, "c1", "inst-2"); !errors.Is(err, ErrStudentInvalid) {
		t.Errorf("为教师选课期望 ErrStudentInvalid，实际=%v", err)
	}
	resp, err := svc.Enroll(ctx, instructorActor, "c1", "s2")
	if err != nil {
		t.Fatalf("选课失败: %v", err)
	}
	if resp.StudentID != "s2" || resp.CourseID != "c1" {
		t.Errorf("选课记录不符: %+v", resp)
	}
	if _, err := svc.Enroll(ctx, adminActor, "c1", "s2"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("重复选课期望 ErrAlreadyEnrolled，实际=%v", err)
	}
	if _, err := svc.Enroll(ctx, adminActor, "missing", "s2"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("课程不存在期望 ErrCourseNotFound，实际=%v", err)
	}
}

func TestCourseUnenroll(t *testing.T) {
	_, svc := courseFixture()
	ctx := context.Background()
	if err := svc.Unenroll(ctx, instructorActor, "c1", "s1"); err != nil {
		t.Fatalf("退课失败: %v", err)
	}
	if err := svc.Unenroll(ctx, instructorActor, "c1", "s1"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("重复退课期望 ErrNotEnrolled，实际=%v", err)
	}
}

func TestCourseGet_Visibility(t *testing.T) {
	_, svc := courseFixture()
	ctx := context.Background()

	for _, a := range []Actor{instructorActor, adminActor, supervisorActor, studentActor} {
		if _, err := svc.Get(ctx, a, "c1"); err != nil {
			t.Errorf("%s 应可查看课程，实际=%v", a.Role, err)
		}
	}
	if _, err := svc.Get(ctx, outsiderStudent, "c1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("未选课学生期望 ErrForbidden，实际=%v", err)
	}
	if _, err := svc.Get(ctx, otherInstructor, "c1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("非授课教师期望 ErrForbidden，实际=%v", err)
	}
}

func TestCourseList_ByRole(t *testing.T) {
	store, svc := courseFixture()
	store.addCourse("c2", "MATH150", "inst-2")
	ctx := context.Background()
	req := &dto.PaginationRequest{}

	list, total, err := svc.List(ctx, studentActor, req)
	if err != nil || total != 1 || list[0].Code != "CS101" {
		t.Errorf("学生只应看到已选课程，实际=%v total=%d err=%v", list, total, err)
	}
	list, total, err = svc.List(ctx, otherInstructor, req)
	if err != nil || total != 1 || list[0].Code != "MATH150" {
		t.Errorf("教师只应看到所授课程，实际=%v total=%d err=%v", list, total, err)
	}
	_, total, err = svc.List(ctx, supervisorActor, req)
	if err != nil || total != 2 {
		t.Errorf("督导应看到全部课程，实际 total=%d err=%v", total, err)
	}
}

func TestCourseListStudents(t *testing.T) {
	_, svc := courseFixture()
	ctx := context.Background()
	if _, err := svc.ListStudents(ctx, studentActor, "c1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("学生查看名单期望 ErrForbidden，实际=%v", err)
	}
	list, err := svc.ListStudents(ctx, supervisorActor, "c1")
	if err != nil {
		t.Fatalf("查询名单失败: %v", err)
	}
	if len(list) != 1 || list[0].ID != "s1" {
		t.Errorf("期望名单仅含 s1，实际=%v", list)
	}
}
