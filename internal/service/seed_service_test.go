package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

func TestSeedDemoData_Disabled(t *testing.T) {
	store := newMemStore()
	svc := NewSeedService(testConfig(), newMockRepository(store), nil, nop)
	if _, err := svc.SeedDemoData(context.Background(), "admin-1"); !errors.Is(err, ErrSeedDisabled) {
		t.Errorf("期望 ErrSeedDisabled，实际=%v", err)
	}
}

func TestSeedDemoData_Idempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Feature.DemoSeed = true
	store := newMemStore()
	store.addProfile("s1", "s1@kku.edu.sa", model.RoleStudent)
	store.addProfile("s2", "s2@kku.edu.sa", model.RoleStudent)
	stats := &mockStatsService{}
	svc := NewSeedService(cfg, newMockRepository(store), stats, nop)
	ctx := context.Background()

	first, err := svc.SeedDemoData(ctx, "admin-1")
	if err != nil {
		t.Fatalf("初始化演示数据失败: %v", err)
	}
	if len(first.Courses) != len(demoCourses) {
		t.Errorf("期望 %d 门课程，实际=%d", len(demoCourses), len(first.Courses))
	}
	if want := int64(2 * len(demoCourses)); first.Enrollments != want {
		t.Errorf("期望新增选课 %d，实际=%d", want, first.Enrollments)
	}
	if first.LiveSession == nil || !first.LiveSession.IsActive || first.LiveSession.Code == "" {
		t.Errorf("应开启一场带签到码的会话，实际=%+v", first.LiveSession)
	}
	if stats.count() != 1 {
		t.Errorf("初始化后应清除统计缓存，实际 %d 次", stats.count())
	}

	second, err := svc.SeedDemoData(ctx, "admin-1")
	if err != nil {
		t.Fatalf("重复初始化失败: %v", err)
	}
	if second.Enrollments != 0 {
		t.Errorf("重复初始化不应新增选课，实际=%d", second.Enrollments)
	}
	if second.InstructorID != first.InstructorID {
		t.Error("重复初始化应复用演示教师")
	}
	if len(store.courses) != len(demoCourses) {
		t.Errorf("重复初始化不应新增课程，实际=%d", len(store.courses))
	}

	var slots int
	for _, dc := range demoCourses {
		slots += len(dc.slots)
	}
	if len(store.schedules) != slots {
		t.Errorf("时段应被替换而非累加，期望 %d，实际=%d", slots, len(store.schedules))
	}
}
