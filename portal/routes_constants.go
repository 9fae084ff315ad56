package portal

// Route path constants for every page of the portal
const (
	// Public Routes
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"

	// Role neutral entry point, resolved to the role landing route
	RouteDashboard = "/dashboard"

	// Admin Routes
	RouteAdminDashboard        = "/admin/dashboard"
	RouteAdminCourses          = "/admin/courses"
	RouteAdminStudents         = "/admin/students"
	RouteAdminEnrolledStudents = "/admin/enrolled-students"
	RouteAdminProfile          = "/admin/profile"

	// Admin quick actions open a dialog on the dashboard
	RouteAdminAddCourse     = RouteAdminDashboard + "?action=addCourse"
	RouteAdminCreateStudent = RouteAdminDashboard + "?action=addStudent"

	// Student Routes
	RouteStudentDashboard = "/student/dashboard"
	RouteStudentCourses   = "/student/courses"
	RouteStudentMyCourses = "/student/my-courses"
	RouteStudentProfile   = "/student/profile"
)

var publicRoutes = map[string]bool{
	RouteHome:     true,
	RouteLogin:    true,
	RouteRegister: true,
}

var protectedRoutes = map[string]bool{
	RouteDashboard:             true,
	RouteAdminDashboard:        true,
	RouteAdminCourses:          true,
	RouteAdminStudents:         true,
	RouteAdminEnrolledStudents: true,
	RouteAdminProfile:          true,
	RouteStudentDashboard:      true,
	RouteStudentCourses:        true,
	RouteStudentMyCourses:      true,
	RouteStudentProfile:        true,
}

// IsPublic reports whether path can be shown without a session
func IsPublic(path string) bool {
	return publicRoutes[path]
}
