package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
)

// ── 内存数据集 ──
//
// 所有 mock 仓库共享同一份数据，便于跨表查询（选课、补记缺勤）。
// 统计与仪表盘会并发读取，统一加锁。

type memStore struct {
	mu            sync.Mutex
	seq           int
	profiles      map[string]*model.Profile
	courses       map[string]*model.Course
	enrollments   []model.Enrollment
	sessions      map[string]*model.Session
	attendance    map[string]*model.Attendance
	schedules     []model.Schedule
	verifications []model.BiometricVerification

	// 注入错误
	countErr error
}

func newMemStore() *memStore {
	return &memStore{
		profiles:   make(map[string]*model.Profile),
		courses:    make(map[string]*model.Course),
		sessions:   make(map[string]*model.Session),
		attendance: make(map[string]*model.Attendance),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepository 组装使用内存数据集的 Repository
func newMockRepository(s *memStore) *repository.Repository {
	return &repository.Repository{
		Profile:      &mockProfileRepo{s},
		Course:       &mockCourseRepo{s},
		Enrollment:   &mockEnrollmentRepo{s},
		Session:      &mockSessionRepo{s},
		Attendance:   &mockAttendanceRepo{s},
		Schedule:     &mockScheduleRepo{s},
		Verification: &mockVerificationRepo{s},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-tests",
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		Cache: config.CacheConfig{
			Backend:      "memory",
			StatsTTL:     30 * time.Second,
			StaleOnError: true,
		},
		Stats:      config.StatsConfig{RecentLimit: 10},
		University: config.UniversityConfig{EmailDomain: "kku.edu.sa", Timezone: "Asia/Riyadh"},
		Feature:    config.FeatureConfig{PublicStats: true},
	}
}

// ── 测试数据辅助 ──

func (s *memStore) addProfile(id, email, role string) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Profile{ProfileID: id, Email: email, FullName: "User " + id, Role: role}
	s.profiles[id] = p
	return p
}

func (s *memStore) addCourse(id, code, instructorID string) *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Course{CourseID: id, Code: code, Name: "Course " + code}
	if instructorID != "" {
		c.InstructorID = &instructorID
	}
	s.courses[id] = c
	return c
}

func (s *memStore) enroll(studentID, courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = append(s.enrollments, model.Enrollment{
		EnrollmentID: s.nextID("enr"), StudentID: studentID, CourseID: courseID,
	})
}

func (s *memStore) addSession(id, courseID, code string, expiresAt time.Time, active bool) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &model.Session{
		SessionID: id, CourseID: courseID, Code: code,
		StartsAt: expiresAt.Add(-15 * time.Minute), ExpiresAt: expiresAt, IsActive: active,
	}
	s.sessions[id] = sess
	return sess
}

func (s *memStore) isEnrolled(courseID, studentID string) bool {
	for _, e := range s.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return true
		}
	}
	return false
}

func statusCounts(records []*model.Attendance) repository.StatusCounts {
	var c repository.StatusCounts
	for _, a := range records {
		switch a.Status {
		case model.StatusPresent:
			c.Present++
		case model.StatusAbsent:
			c.Absent++
		}
	}
	return c
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct{ s *memStore }

func (m *mockProfileRepo) Create(_ context.Context, p *model.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ProfileID == "" {
		p.ProfileID = m.s.nextID("profile")
	}
	m.s.profiles[p.ProfileID] = p
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p, ok := m.s.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByUniversityID(_ context.Context, universityID string) (*model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.profiles {
		if p.UniversityID != nil && *p.UniversityID == universityID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) List(_ context.Context, filter repository.ProfileFilter, offset, limit int) ([]model.Profile, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Profile
	for _, p := range m.s.profiles {
		if filter.Role != "" && p.Role != filter.Role {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.FullName+p.Email), strings.ToLower(filter.Keyword)) {
			continue
		}
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProfileID < list[j].ProfileID })
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockProfileRepo) UpdateRole(_ context.Context, id, role, updatedBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Role = role
	p.UpdatedBy = &updatedBy
	return nil
}

func (m *mockProfileRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.countErr != nil {
		return nil, m.s.countErr
	}
	out := make(map[string]int64)
	for _, p := range m.s.profiles {
		out[p.Role]++
	}
	return out, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.courses {
		if existing.Code == c.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.CourseID == "" {
		c.CourseID = m.s.nextID("course")
	}
	m.s.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.courses {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) all(keep func(*model.Course) bool) []model.Course {
	var list []model.Course
	for _, c := range m.s.courses {
		if keep(c) {
			list = append(list, *c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func (m *mockCourseRepo) List(_ context.Context, offset, limit int) ([]model.Course, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.all(func(*model.Course) bool { return true })
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockCourseRepo) ListByInstructor(_ context.Context, instructorID string) ([]model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.all(func(c *model.Course) bool {
		return c.InstructorID != nil && *c.InstructorID == instructorID
	}), nil
}

func (m *mockCourseRepo) ListByStudent(_ context.Context, studentID string) ([]model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.all(func(c *model.Course) bool { return m.s.isEnrolled(c.CourseID, studentID) }), nil
}

func (m *mockCourseRepo) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.countErr != nil {
		return 0, m.s.countErr
	}
	return int64(len(m.s.courses)), nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *memStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.isEnrolled(e.CourseID, e.StudentID) {
		return gorm.ErrDuplicatedKey
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = m.s.nextID("enr")
	}
	m.s.enrollments = append(m.s.enrollments, *e)
	return nil
}

func (m *mockEnrollmentRepo) EnsureMany(_ context.Context, enrollments []model.Enrollment) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var added int64
	for _, e := range enrollments {
		if m.s.isEnrolled(e.CourseID, e.StudentID) {
			continue
		}
		e.EnrollmentID = m.s.nextID("enr")
		m.s.enrollments = append(m.s.enrollments, e)
		added++
	}
	return added, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, courseID, studentID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, e := range m.s.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			m.s.enrollments = append(m.s.enrollments[:i], m.s.enrollments[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, courseID, studentID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.isEnrolled(courseID, studentID), nil
}

func (m *mockEnrollmentRepo) ListStudents(_ context.Context, courseID string) ([]model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Profile
	for _, e := range m.s.enrollments {
		if e.CourseID == courseID {
			if p, ok := m.s.profiles[e.StudentID]; ok {
				list = append(list, *p)
			}
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, e := range m.s.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) CountStudentsByInstructor(_ context.Context, instructorID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seen := make(map[string]bool)
	for _, e := range m.s.enrollments {
		c, ok := m.s.courses[e.CourseID]
		if ok && c.InstructorID != nil && *c.InstructorID == instructorID {
			seen[e.StudentID] = true
		}
	}
	return int64(len(seen)), nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct{ s *memStore }

func (m *mockSessionRepo) Open(_ context.Context, sess *model.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.sessions {
		if existing.IsActive && existing.Code == sess.Code && existing.CourseID != sess.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	for _, existing := range m.s.sessions {
		if existing.CourseID == sess.CourseID {
			existing.IsActive = false
		}
	}
	if sess.SessionID == "" {
		sess.SessionID = m.s.nextID("session")
	}
	cp := *sess
	m.s.sessions[sess.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if sess, ok := m.s.sessions[id]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetActiveByCode(_ context.Context, code string) (*model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sess := range m.s.sessions {
		if sess.IsActive && sess.Code == code {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter, offset, limit int) ([]model.Session, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	allowed := make(map[string]bool, len(filter.CourseIDs))
	for _, id := range filter.CourseIDs {
		allowed[id] = true
	}
	var list []model.Session
	for _, sess := range m.s.sessions {
		if filter.CourseID != "" && sess.CourseID != filter.CourseID {
			continue
		}
		if filter.CourseIDs != nil && !allowed[sess.CourseID] {
			continue
		}
		if filter.Active != nil && sess.IsActive != *filter.Active {
			continue
		}
		list = append(list, *sess)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartsAt.After(list[j].StartsAt) })
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockSessionRepo) ListActive(_ context.Context, courseIDs []string, now time.Time) ([]model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Session
	for _, id := range courseIDs {
		for _, sess := range m.s.sessions {
			if sess.CourseID == id && sess.Open(now) {
				list = append(list, *sess)
			}
		}
	}
	return list, nil
}

func (m *mockSessionRepo) ListOverdue(_ context.Context, now time.Time) ([]model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Session
	for _, sess := range m.s.sessions {
		if sess.IsActive && !sess.ExpiresAt.After(now) {
			list = append(list, *sess)
		}
	}
	return list, nil
}

func (m *mockSessionRepo) Close(_ context.Context, sessionID, closedBy string, now time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[sessionID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	sess.IsActive = false
	if closedBy != "" {
		sess.UpdatedBy = &closedBy
	}

	recorded := make(map[string]bool)
	for _, a := range m.s.attendance {
		if a.SessionID == sessionID {
			recorded[a.StudentID] = true
		}
	}
	var marked int64
	for _, e := range m.s.enrollments {
		if e.CourseID != sess.CourseID || recorded[e.StudentID] {
			continue
		}
		id := m.s.nextID("att")
		m.s.attendance[id] = &model.Attendance{
			AttendanceID: id, StudentID: e.StudentID, SessionID: sessionID,
			Status: model.StatusAbsent, Method: model.MethodAuto, RecordedAt: now,
		}
		marked++
	}
	return marked, nil
}

func (m *mockSessionRepo) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.countErr != nil {
		return 0, m.s.countErr
	}
	var n int64
	for _, sess := range m.s.sessions {
		if !sess.StartsAt.Before(from) && sess.StartsAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, sess := range m.s.sessions {
		if sess.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ s *memStore }

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.attendance {
		if existing.StudentID == a.StudentID && existing.SessionID == a.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AttendanceID == "" {
		a.AttendanceID = m.s.nextID("att")
	}
	cp := *a
	m.s.attendance[a.AttendanceID] = &cp
	return nil
}

// withRefs 补齐预加载的学生与会话（含课程）
func (m *mockAttendanceRepo) withRefs(a *model.Attendance) model.Attendance {
	cp := *a
	cp.Student = m.s.profiles[a.StudentID]
	if sess, ok := m.s.sessions[a.SessionID]; ok {
		sc := *sess
		sc.Course = m.s.courses[sess.CourseID]
		cp.Session = &sc
	}
	return cp
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.attendance[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withRefs(a)
	return &cp, nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id, status, method, updatedBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.attendance[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	a.Method = method
	a.UpdatedBy = &updatedBy
	return nil
}

func (m *mockAttendanceRepo) filter(keep func(*model.Attendance) bool) []model.Attendance {
	var list []model.Attendance
	for _, a := range m.s.attendance {
		if keep(a) {
			list = append(list, m.withRefs(a))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].RecordedAt.After(list[j].RecordedAt) })
	return list
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.Attendance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(a *model.Attendance) bool { return a.SessionID == sessionID }), nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID, courseID string, offset, limit int) ([]model.Attendance, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.filter(func(a *model.Attendance) bool {
		if a.StudentID != studentID {
			return false
		}
		if courseID == "" {
			return true
		}
		sess, ok := m.s.sessions[a.SessionID]
		return ok && sess.CourseID == courseID
	})
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockAttendanceRepo) ListByCourse(_ context.Context, courseID string) ([]model.Attendance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(a *model.Attendance) bool {
		sess, ok := m.s.sessions[a.SessionID]
		return ok && sess.CourseID == courseID
	}), nil
}

func (m *mockAttendanceRepo) Recent(_ context.Context, limit int) ([]model.Attendance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return page(m.filter(func(*model.Attendance) bool { return true }), 0, limit), nil
}

func (m *mockAttendanceRepo) collect(keep func(*model.Attendance) bool) repository.StatusCounts {
	var list []*model.Attendance
	for _, a := range m.s.attendance {
		if keep(a) {
			list = append(list, a)
		}
	}
	return statusCounts(list)
}

func (m *mockAttendanceRepo) CountBetween(_ context.Context, from, to time.Time) (repository.StatusCounts, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.countErr != nil {
		return repository.StatusCounts{}, m.s.countErr
	}
	return m.collect(func(a *model.Attendance) bool {
		return !a.RecordedAt.Before(from) && a.RecordedAt.Before(to)
	}), nil
}

func (m *mockAttendanceRepo) CountByStudent(_ context.Context, studentID string) (repository.StatusCounts, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.collect(func(a *model.Attendance) bool { return a.StudentID == studentID }), nil
}

func (m *mockAttendanceRepo) CountByCourse(_ context.Context, courseID string) (repository.StatusCounts, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.collect(func(a *model.Attendance) bool {
		sess, ok := m.s.sessions[a.SessionID]
		return ok && sess.CourseID == courseID
	}), nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct{ s *memStore }

func (m *mockScheduleRepo) ListByCourse(_ context.Context, courseID string) ([]model.Schedule, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Schedule
	for _, sc := range m.s.schedules {
		if sc.CourseID == courseID {
			list = append(list, sc)
		}
	}
	return list, nil
}

func (m *mockScheduleRepo) ReplaceByCourse(_ context.Context, courseID, source string, schedules []model.Schedule) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	kept := m.s.schedules[:0]
	for _, sc := range m.s.schedules {
		if sc.CourseID != courseID || sc.Source != source {
			kept = append(kept, sc)
		}
	}
	for _, sc := range schedules {
		sc.ScheduleID = m.s.nextID("sched")
		kept = append(kept, sc)
	}
	m.s.schedules = kept
	return nil
}

// ── Mock VerificationRepository ──

type mockVerificationRepo struct{ s *memStore }

func (m *mockVerificationRepo) Create(_ context.Context, v *model.BiometricVerification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	v.VerificationID = m.s.nextID("verif")
	m.s.verifications = append(m.s.verifications, *v)
	return nil
}

func (m *mockVerificationRepo) ListByProfile(_ context.Context, profileID string, limit int) ([]model.BiometricVerification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.BiometricVerification
	for _, v := range m.s.verifications {
		if v.ProfileID == profileID {
			list = append(list, v)
		}
	}
	return page(list, 0, limit), nil
}

// ── Mock StatsService ──

type mockStatsService struct {
	mu          sync.Mutex
	invalidated int
}

func (m *mockStatsService) GetDashboardStats(context.Context) (*dto.DashboardStats, error) {
	return &dto.DashboardStats{Students: 1}, nil
}

func (m *mockStatsService) GetPublicStats(context.Context) (*dto.PublicStats, error) {
	return &dto.PublicStats{Students: 1}, nil
}

func (m *mockStatsService) Invalidate(context.Context) error {
	m.mu.Lock()
	m.invalidated++
	m.mu.Unlock()
	return nil
}

func (m *mockStatsService) StartPolling(context.Context) {}

func (m *mockStatsService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidated
}

var nop = zap.NewNop()
