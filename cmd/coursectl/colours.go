package main

import (
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/jrsteele09/go-course-portal/users"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var statusColors = map[students.Status]string{
	students.StatusActive:    Green,
	students.StatusInactive:  Gray,
	students.StatusGraduated: Blue,
	students.StatusDropped:   Red,
}

var enrollmentColors = map[students.EnrollmentStatus]string{
	students.EnrollmentEnrolled:  Green,
	students.EnrollmentCompleted: Blue,
	students.EnrollmentWithdrawn: Gray,
	students.EnrollmentFailed:    Red,
	students.EnrollmentSuspended: Yellow,
}

var roleColors = map[users.RoleType]string{
	users.RoleAdmin:   Magenta,
	users.RoleStudent: Cyan,
}

func (cli *commandLine) paint(colour, text string) string {
	if !cli.colour || colour == "" {
		return text
	}
	return colour + text + ResetColor
}

func (cli *commandLine) activeLabel(active bool) string {
	if active {
		return cli.paint(Green, "active")
	}
	return cli.paint(Gray, "inactive")
}
