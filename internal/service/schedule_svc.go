package service

import (
	"fmt"
	"time"

	"auctionx_v1_202608/internal/model"
)

const (
	scheduleDateLayout = "2006-01-02"
	scheduleTimeLayout = "15:04"

	// MinScheduleLead 开拍时间距当前时间的最小提前量
	MinScheduleLead = 2 * time.Hour
)

// ScheduleService 拍卖排期校验
// now 可注入，方便测试固定时钟
type ScheduleService struct {
	now func() time.Time
}

// NewScheduleService 创建排期服务
func NewScheduleService() *ScheduleService {
	return &ScheduleService{now: time.Now}
}

// NewScheduleServiceWithClock 使用指定时钟创建排期服务
func NewScheduleServiceWithClock(now func() time.Time) *ScheduleService {
	return &ScheduleService{now: now}
}

// Validate 校验排期
// 规则：日期与时间可解析；开拍时刻不早于 now + 2h；日期不在过去
func (s *ScheduleService) Validate(sc model.Schedule) map[string]string {
	errs := make(map[string]string)
	now := s.now()

	date, err := time.ParseInLocation(scheduleDateLayout, sc.StartDate, now.Location())
	if err != nil {
		errs["biddingStartDate"] = "请选择开拍日期"
	}

	t, err := time.Parse(scheduleTimeLayout, sc.StartTime)
	if err != nil {
		errs["biddingStartTime"] = "请选择开拍时间"
	}

	if len(errs) > 0 {
		return errs
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		errs["biddingStartDate"] = "开拍日期不能早于今天"
		return errs
	}

	start := time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, now.Location())

	earliest := now.Add(MinScheduleLead)
	if start.Before(earliest) {
		// 当天开拍时给出可选的最早时刻，其余情况提示日期
		if date.Year() == now.Year() && date.YearDay() == now.YearDay() {
			errs["biddingStartTime"] = fmt.Sprintf(
				"今天开拍最早可选 %s（需至少提前 %d 小时）",
				earliest.Format(scheduleTimeLayout), int(MinScheduleLead.Hours()))
		} else {
			errs["biddingStartDate"] = fmt.Sprintf(
				"开拍时间需至少提前 %d 小时", int(MinScheduleLead.Hours()))
		}
		return errs
	}

	return nil
}

// EarliestStart 返回当前时刻允许的最早开拍时间
func (s *ScheduleService) EarliestStart() time.Time {
	return s.now().Add(MinScheduleLead)
}
