package timeutil

import (
	"errors"
	"fmt"
	"regexp"
)

// ── 墙钟时间工具 ──
//
// 职责：考勤与工时模块共享的纯时间运算。
// 只处理同一天内的 HH:mm 墙钟时间，不涉及日期、时区与 I/O。

// ErrInvalidFormat 时间字符串不符合 24 小时制 HH:mm 格式
var ErrInvalidFormat = errors.New("时间格式无效，应为 HH:mm")

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// TimeOfDay 当天零点起的分钟数（0 ~ 1439）
type TimeOfDay int

// Parse 解析 24 小时制 HH:mm 字符串。
// "24:00"、"9:30"、"12:60" 等均返回 ErrInvalidFormat。
func Parse(s string) (TimeOfDay, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	// 正则已保证两段均为合法两位数字
	hour := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	minute := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return TimeOfDay(hour*60 + minute), nil
}

// String 格式化为 HH:mm，与 Parse 对所有合法输入互为逆运算。
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Hour 小时部分（0-23）
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute 分钟部分（0-59）
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// DurationMinutes 计算 end - start 的分钟数。
// 结果可能为零或负数，合法性由调用方判断。
func DurationMinutes(start, end TimeOfDay) int {
	return int(end) - int(start)
}

// RangesOverlap 判断两个半开区间 [aStart,aEnd) 与 [bStart,bEnd) 是否相交。
// 端点相接（aEnd == bStart）不算重叠。
func RangesOverlap(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
