package api

import "fmt"

// Backend endpoint paths. All paths carry the trailing slash the backend expects.
const (
	// Auth
	PathLogin          = "/api/auth/login/"
	PathRegister       = "/api/auth/register/"
	PathLogout         = "/api/auth/logout/"
	PathProfile        = "/api/auth/profile/"
	PathChangePassword = "/api/auth/change-password/"
	PathTokenRefresh   = "/api/auth/token/refresh/"
	PathUsers          = "/api/auth/users/"

	// Courses
	PathCourses       = "/api/courses/"
	PathActiveCourses = "/api/courses/active/"

	// Students
	PathStudents         = "/api/students/"
	PathActiveStudents   = "/api/students/active/"
	PathStudentsByCourse = "/api/students/by-course/"
	PathMyProfile        = "/api/students/my-profile/"
	PathMyProfileEnroll  = "/api/students/my-profile/enroll/"
)

func coursePath(id fmt.Stringer, action string) string {
	if action == "" {
		return PathCourses + id.String() + "/"
	}
	return PathCourses + id.String() + "/" + action + "/"
}

func studentPath(id fmt.Stringer, action string) string {
	if action == "" {
		return PathStudents + id.String() + "/"
	}
	return PathStudents + id.String() + "/" + action + "/"
}
