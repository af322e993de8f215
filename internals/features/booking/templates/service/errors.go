package service

import "errors"

var (
	ErrTemplateNotFound = errors.New("session template not found")
	ErrNoSchedules      = errors.New("template has no schedules or one-off entries")
	ErrInvalidDayToken  = errors.New("invalid day token")
	ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:mm")
)
