package model

import (
	"regexp"
	"strconv"
)

var weekRangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseWeekRange 解析 "start-end" 形式的周次范围
// 格式不符或数值溢出时 ok 为 false；start > end 原样返回，由调用方按边界判断
func ParseWeekRange(s string) (start, end int, ok bool) {
	m := weekRangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
