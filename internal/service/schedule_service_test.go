package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

func setupSchedule() (*memStore, ScheduleService) {
	store, _ := courseFixture()
	cfg := testConfig()
	cfg.University.Timezone = "UTC"
	return store, NewScheduleService(cfg, newMockRepository(store), nop)
}

func TestScheduleImportICS_ReplacesPreviousImport(t *testing.T) {
	store, svc := setupSchedule()
	store.schedules = append(store.schedules, model.Schedule{ScheduleID: "manual-1", CourseID: "c1", DayOfWeek: 1, Source: "manual"})
	ctx := context.Background()

	resp, err := svc.ImportICS(ctx, instructorActor, "c1", strings.NewReader(crlf(sampleICS)))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if resp.Imported != 2 {
		t.Errorf("期望导入 2 个时段，实际=%d", resp.Imported)
	}
	if _, err := svc.ImportICS(ctx, instructorActor, "c1", strings.NewReader(crlf(sampleICS))); err != nil {
		t.Fatalf("重复导入失败: %v", err)
	}

	list, err := svc.ListByCourse(ctx, studentActor, "c1")
	if err != nil {
		t.Fatalf("查询时段失败: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("重复导入应替换 ics 时段并保留手工时段，期望 3，实际=%d", len(list))
	}
}

func TestScheduleImportICS_Rejections(t *testing.T) {
	_, svc := setupSchedule()
	ctx := context.Background()

	if _, err := svc.ImportICS(ctx, otherInstructor, "c1", strings.NewReader(sampleICS)); !errors.Is(err, ErrForbidden) {
		t.Errorf("非授课教师期望 ErrForbidden，实际=%v", err)
	}
	if _, err := svc.ImportICS(ctx, instructorActor, "c1", strings.NewReader("not a calendar")); !errors.Is(err, ErrICSInvalid) {
		t.Errorf("非法内容期望 ErrICSInvalid，实际=%v", err)
	}
	if _, err := svc.ListByCourse(ctx, outsiderStudent, "c1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("未选课学生查看时段期望 ErrForbidden，实际=%v", err)
	}
}
