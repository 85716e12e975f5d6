package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 课表解析为课程的每周时段。
//
// 规则：
//   - DTSTART/DTEND 确定星期几与时间
//   - 第 1 周从最早事件所在周的周日开始
//   - RRULE 展开为周次，EXDATE 排除；无 RRULE 的单次事件仅填所在周
//   - 同星期、同时间、同地点的事件合并周次
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	icsMaxWeeks     = 20
)

// parsedSlotEvent ICS 解析中间结构
type parsedSlotEvent struct {
	DayOfWeek int // 1=Monday … 7=Sunday
	StartTime string
	EndTime   string
	Location  string
	Weeks     []int
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	ctx, cancel := context.WithTimeout(ctx, icsFetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid ics url: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch ics: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetch ics: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: closerFunc(func() error {
			defer cancel()
			return resp.Body.Close()
		}),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ParseICS 解析 ICS 内容并转为课程时段列表
func ParseICS(reader io.Reader, courseID string, loc *time.Location) ([]model.Schedule, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	// 阶段 1: 取出可用的 VEVENT 并确定学期起点
	type rawEvent struct {
		evt        *ics.VEvent
		start, end time.Time
	}
	var raws []rawEvent
	var termStart time.Time
	for _, comp := range cal.Events() {
		start, err := parseICSDateTime(comp, ics.ComponentPropertyDtStart, loc)
		if err != nil {
			continue
		}
		end, err := parseICSDateTime(comp, ics.ComponentPropertyDtEnd, loc)
		if err != nil {
			if comp.GetProperty(ics.ComponentPropertyDuration) == nil {
				continue
			}
			// 简化处理：有 DURATION 时默认 100 分钟
			end = start.Add(100 * time.Minute)
		}
		raws = append(raws, rawEvent{evt: comp, start: start, end: end})
		if termStart.IsZero() || start.Before(termStart) {
			termStart = start
		}
	}
	if len(raws) == 0 {
		return []model.Schedule{}, nil
	}
	termStart = weekStart(termStart)

	// 阶段 2: 计算周次
	events := make([]parsedSlotEvent, 0, len(raws))
	for _, r := range raws {
		weeks := computeWeeks(r.evt, r.start, termStart, loc)
		if len(weeks) == 0 {
			continue
		}
		location := ""
		if p := r.evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
			location = strings.TrimSpace(p.Value)
		}
		events = append(events, parsedSlotEvent{
			DayOfWeek: goWeekdayToISO(r.start.Weekday()),
			StartTime: r.start.Format("15:04"),
			EndTime:   r.end.Format("15:04"),
			Location:  location,
			Weeks:     weeks,
		})
	}

	// 阶段 3: 合并并转为 model.Schedule
	merged := mergeEvents(events)
	result := make([]model.Schedule, 0, len(merged))
	for _, evt := range merged {
		sort.Ints(evt.Weeks)
		result = append(result, model.Schedule{
			CourseID:  courseID,
			DayOfWeek: evt.DayOfWeek,
			StartTime: evt.StartTime,
			EndTime:   evt.EndTime,
			Location:  evt.Location,
			Weeks:     model.IntArray(evt.Weeks),
			Source:    "ics",
		})
	}
	return result, nil
}

// computeWeeks 根据 RRULE / EXDATE / 单次事件计算周次列表
func computeWeeks(evt *ics.VEvent, dtStart, termStart time.Time, loc *time.Location) []int {
	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	rule := rruleParams{}
	if rruleProp != nil {
		rule = parseRRule(rruleProp.Value)
	}
	if rule.freq != "WEEKLY" {
		// 单次或非周重复 → 仅当前周
		wk := dateToWeekNumber(dtStart, termStart)
		if wk >= 1 && wk <= icsMaxWeeks {
			return []int{wk}
		}
		return nil
	}

	exDates := parseExDates(evt, loc)
	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	var weeks []int
	weekSet := make(map[int]bool)
	current := dtStart
	for count := 0; ; count++ {
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && count >= rule.count {
			break
		}
		wk := dateToWeekNumber(current, termStart)
		if wk > icsMaxWeeks {
			break
		}
		if wk >= 1 && !exDates[current.Format("20060102")] && !weekSet[wk] {
			weekSet[wk] = true
			weeks = append(weeks, wk)
		}
		current = current.AddDate(0, 0, 7*interval)
	}
	return weeks
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			t, err := time.Parse("20060102T150405Z", v)
			if err != nil {
				t, err = time.ParseInLocation("20060102T150405", v, loc)
				if err != nil {
					t, err = time.ParseInLocation("20060102", v, loc)
				}
			}
			if err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// mergeEvents 合并相同时段事件的周次，保持首次出现顺序
func mergeEvents(events []parsedSlotEvent) []parsedSlotEvent {
	type key struct {
		DayOfWeek int
		StartTime string
		EndTime   string
		Location  string
	}
	merged := make(map[key]*parsedSlotEvent)
	order := []key{}

	for _, e := range events {
		k := key{DayOfWeek: e.DayOfWeek, StartTime: e.StartTime, EndTime: e.EndTime, Location: e.Location}
		if existing, ok := merged[k]; ok {
			weekSet := make(map[int]bool)
			for _, w := range existing.Weeks {
				weekSet[w] = true
			}
			for _, w := range e.Weeks {
				if !weekSet[w] {
					existing.Weeks = append(existing.Weeks, w)
				}
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedSlotEvent, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// ── 辅助函数 ──

// goWeekdayToISO 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// weekStart 返回 t 所在周的周日零点（学校一周从周日开始）
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// dateToWeekNumber 计算日期相对学期起点的周次（1-based），按日历日计算
func dateToWeekNumber(date, termStart time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(termStart.Year(), termStart.Month(), termStart.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 检查 TZID 参数
	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, tzLoc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", val)
}
