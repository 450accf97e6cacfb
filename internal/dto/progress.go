package dto

// ── 学期进度 DTO ──

// ProgressStatusResponse 进度档位
type ProgressStatusResponse struct {
	Label   string `json:"label"`
	Color   string `json:"color"`
	BgColor string `json:"bg_color"`
}

// CourseProgressResponse 单门课程进度
type CourseProgressResponse struct {
	CourseID         string                 `json:"course_id"`
	CourseName       string                 `json:"course_name"`
	StartWeek        int                    `json:"start_week"`
	EndWeek          int                    `json:"end_week"`
	TotalMinutes     int                    `json:"total_minutes"`
	CompletedMinutes int                    `json:"completed_minutes"`
	RemainingMinutes int                    `json:"remaining_minutes"`
	Percentage       float64                `json:"percentage"`
	IsActive         bool                   `json:"is_active"`
	WeeksCount       int                    `json:"weeks_count"`
	CompletedWeeks   int                    `json:"completed_weeks"`
	TotalText        string                 `json:"total_text"`
	CompletedText    string                 `json:"completed_text"`
	RemainingText    string                 `json:"remaining_text"`
	Status           ProgressStatusResponse `json:"status"`
}

// SemesterProgressResponse 学期总进度
type SemesterProgressResponse struct {
	Week                  int                    `json:"week"`
	TotalMinutes          int                    `json:"total_minutes"`
	CompletedMinutes      int                    `json:"completed_minutes"`
	RemainingMinutes      int                    `json:"remaining_minutes"`
	Percentage            float64                `json:"percentage"`
	TotalCourses          int                    `json:"total_courses"`
	CompletedCourses      int                    `json:"completed_courses"`
	AverageWeeksPerCourse float64                `json:"average_weeks_per_course"`
	TotalText             string                 `json:"total_text"`
	CompletedText         string                 `json:"completed_text"`
	RemainingText         string                 `json:"remaining_text"`
	Status                ProgressStatusResponse `json:"status"`
}
