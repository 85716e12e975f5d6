package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("failed to generate excel file")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出课程出勤表为 Excel (.xlsx)
//   - 行为选课学生，列为会话（按开始时间排序），末列为出勤率
//   - 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportCourseAttendance(ctx context.Context, actor Actor, courseID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	loc, err := time.LoadLocation(cfg.University.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, loc: loc, logger: logger}
}

func (s *exportService) ExportCourseAttendance(ctx context.Context, actor Actor, courseID string) (*bytes.Buffer, string, error) {
	// 1. 课程与权限
	course, err := loadCourse(ctx, s.repo, actor, courseID, true)
	if err != nil {
		return nil, "", err
	}

	// 2. 学生与出勤记录
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程学生失败", zap.Error(err))
		return nil, "", err
	}
	records, err := s.repo.Attendance.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程出勤失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 索引: studentID:sessionID → status；收集会话列
	status := make(map[string]string, len(records))
	sessionSeen := make(map[string]bool)
	var sessions []model.Session
	for _, r := range records {
		status[r.StudentID+":"+r.SessionID] = r.Status
		if r.Session != nil && !sessionSeen[r.SessionID] {
			sessionSeen[r.SessionID] = true
			sessions = append(sessions, *r.Session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartsAt.Before(sessions[j].StartsAt)
	})

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendance"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	lastCol := colName(3 + len(sessions))
	if len(sessions) > 0 {
		f.SetColWidth(sheetName, colName(3), colName(2+len(sessions)), 16)
	}
	f.SetColWidth(sheetName, lastCol, lastCol, 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s", course.Code, course.Name))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "University ID")
	f.SetCellValue(sheetName, cell("B", row), "Student")
	for i, sess := range sessions {
		f.SetCellValue(sheetName, cell(colName(3+i), row), sess.StartsAt.In(s.loc).Format("2006-01-02 15:04"))
	}
	f.SetCellValue(sheetName, cell(lastCol, row), "Rate")
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, st := range students {
		uid := ""
		if st.UniversityID != nil {
			uid = *st.UniversityID
		}
		f.SetCellValue(sheetName, cell("A", row), uid)
		f.SetCellValue(sheetName, cell("B", row), st.FullName)

		var present, total int64
		for i, sess := range sessions {
			v, ok := status[st.ProfileID+":"+sess.SessionID]
			if !ok {
				v = "-"
			} else {
				total++
				if v == model.StatusPresent {
					present++
				}
			}
			f.SetCellValue(sheetName, cell(colName(3+i), row), v)
		}
		f.SetCellValue(sheetName, cell(lastCol, row), fmt.Sprintf("%d%%", AttendanceRate(present, total)))
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", course.Code)
	return buf, filename, nil
}

// colName 列号转列名（1 → A）
func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

// cell 列名 + 行号
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
