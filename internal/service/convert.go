package service

import (
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// ── model → dto 转换 ──

func toProfileResponse(p *model.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:        p.ProfileID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
	if p.UniversityID != nil {
		resp.UniversityID = *p.UniversityID
	}
	return resp
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:          c.CourseID,
		Code:        c.Code,
		Name:        c.Name,
		Room:        c.Room,
		Description: c.Description,
	}
	if c.InstructorID != nil {
		resp.InstructorID = *c.InstructorID
	}
	if c.Instructor != nil {
		resp.InstructorName = c.Instructor.FullName
	}
	return resp
}

func toSessionResponse(s *model.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:        s.SessionID,
		CourseID:  s.CourseID,
		Code:      s.Code,
		StartsAt:  s.StartsAt,
		ExpiresAt: s.ExpiresAt,
		IsActive:  s.IsActive,
	}
	if s.Course != nil {
		resp.CourseCode = s.Course.Code
		resp.CourseName = s.Course.Name
	}
	return resp
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:         a.AttendanceID,
		StudentID:  a.StudentID,
		SessionID:  a.SessionID,
		Status:     a.Status,
		Method:     a.Method,
		RecordedAt: a.RecordedAt,
	}
	if a.Student != nil {
		resp.StudentName = a.Student.FullName
	}
	if a.Session != nil && a.Session.Course != nil {
		resp.CourseCode = a.Session.Course.Code
		resp.CourseName = a.Session.Course.Name
	}
	return resp
}

func toScheduleResponse(s *model.Schedule) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ID:        s.ScheduleID,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Location:  s.Location,
		Weeks:     []int(s.Weeks),
		Source:    s.Source,
	}
}
