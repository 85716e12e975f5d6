package service

import (
	"context"
	"testing"
	"time"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

func setupDashboard() (*memStore, *dashboardService) {
	store, _ := courseFixture()
	store.enroll("s2", "c1")
	store.addCourse("c2", "MATH150", "inst-2")
	store.enroll("s1", "c2")
	now := time.Now()
	store.addSession("live", "c1", "LIVE22", now.Add(10*time.Minute), true)
	store.addSession("old", "c1", "OLD222", now.Add(-time.Hour), false)
	store.attendance["a1"] = &model.Attendance{AttendanceID: "a1", StudentID: "s1", SessionID: "old", Status: model.StatusPresent, RecordedAt: now.Add(-time.Hour)}
	store.attendance["a2"] = &model.Attendance{AttendanceID: "a2", StudentID: "s2", SessionID: "old", Status: model.StatusAbsent, RecordedAt: now.Add(-time.Hour)}

	svc := NewDashboardService(newMockRepository(store), &mockStatsService{}, nop).(*dashboardService)
	return store, svc
}

func TestDashboard_Student(t *testing.T) {
	_, svc := setupDashboard()

	d, err := svc.Student(context.Background(), "s1")
	if err != nil {
		t.Fatalf("学生仪表盘失败: %v", err)
	}
	if len(d.Courses) != 2 {
		t.Errorf("期望 2 门课程，实际=%d", len(d.Courses))
	}
	if len(d.ActiveSessions) != 1 {
		t.Fatalf("期望 1 场进行中会话，实际=%d", len(d.ActiveSessions))
	}
	if d.ActiveSessions[0].Code != "" {
		t.Errorf("学生仪表盘不应展示签到码，实际=%s", d.ActiveSessions[0].Code)
	}
	if d.Present != 1 || d.Absent != 0 || d.AttendanceRate != 100 {
		t.Errorf("期望出勤 1/0 出勤率 100，实际 %d/%d rate=%d", d.Present, d.Absent, d.AttendanceRate)
	}
	if len(d.Recent) != 1 || d.Recent[0].CourseCode != "CS101" {
		t.Errorf("最近出勤不符: %+v", d.Recent)
	}
}

func TestDashboard_Instructor(t *testing.T) {
	_, svc := setupDashboard()

	d, err := svc.Instructor(context.Background(), "inst-1")
	if err != nil {
		t.Fatalf("教师仪表盘失败: %v", err)
	}
	if len(d.Courses) != 1 {
		t.Fatalf("期望 1 门所授课程，实际=%d", len(d.Courses))
	}
	c := d.Courses[0]
	if c.Students != 2 || c.Sessions != 2 || c.AttendanceRate != 50 {
		t.Errorf("课程汇总不符: %+v", c)
	}
	if d.TotalStudents != 2 {
		t.Errorf("期望学生总数 2，实际=%d", d.TotalStudents)
	}
	if len(d.ActiveSessions) != 1 || d.ActiveSessions[0].Code != "LIVE22" {
		t.Errorf("教师应看到进行中会话及签到码，实际=%+v", d.ActiveSessions)
	}
}

func TestDashboard_SupervisorAndAdmin(t *testing.T) {
	_, svc := setupDashboard()
	ctx := context.Background()

	sup, err := svc.Supervisor(ctx)
	if err != nil {
		t.Fatalf("督导仪表盘失败: %v", err)
	}
	if len(sup.CourseOverview) != 2 {
		t.Errorf("督导应看到全部 2 门课程，实际=%d", len(sup.CourseOverview))
	}
	if sup.TotalCourses != 2 || sup.CoursesTruncated {
		t.Errorf("课程未超限不应截断，实际 total=%d truncated=%v", sup.TotalCourses, sup.CoursesTruncated)
	}
	if sup.Stats.Students != 1 {
		t.Errorf("统计应来自 StatsService，实际=%+v", sup.Stats)
	}

	admin, err := svc.Admin(ctx)
	if err != nil {
		t.Fatalf("管理员仪表盘失败: %v", err)
	}
	if admin.Stats.Students != 1 {
		t.Errorf("统计应来自 StatsService，实际=%+v", admin.Stats)
	}
}

func TestDashboard_SupervisorFlagsTruncatedOverview(t *testing.T) {
	store, svc := setupDashboard()
	store.addCourse("c3", "PHY101", "inst-2")
	svc.courseLimit = 2

	sup, err := svc.Supervisor(context.Background())
	if err != nil {
		t.Fatalf("督导仪表盘失败: %v", err)
	}
	if len(sup.CourseOverview) != 2 {
		t.Errorf("概览应只含 2 门课程，实际=%d", len(sup.CourseOverview))
	}
	if sup.TotalCourses != 3 {
		t.Errorf("期望课程总数 3，实际=%d", sup.TotalCourses)
	}
	if !sup.CoursesTruncated {
		t.Error("课程数超过上限时应标记截断")
	}
}
