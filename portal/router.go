package portal

import (
	"strings"

	"github.com/jrsteele09/go-course-portal/users"
)

// NavItem is one entry of the navigation menu
type NavItem struct {
	Name string
	Href string
}

// Surface is everything a signed in user of one role gets to see
type Surface struct {
	Role         users.RoleType
	Landing      string
	Navigation   []NavItem
	QuickActions []NavItem
}

// Title returns the navigation name for path, or "Dashboard" when path is not in the menu
func (s Surface) Title(path string) string {
	for _, item := range s.Navigation {
		if item.Href == path {
			return item.Name
		}
	}
	return "Dashboard"
}

// Allows reports whether path belongs to this surface. Shared routes are allowed for every role.
func (s Surface) Allows(path string) bool {
	switch {
	case strings.HasPrefix(path, "/admin/"):
		return s.Role == users.RoleAdmin
	case strings.HasPrefix(path, "/student/"):
		return s.Role == users.RoleStudent
	default:
		return true
	}
}

// Router picks the surface for a user. It shapes navigation only; the
// backend enforces permissions.
type Router struct {
	admin   Surface
	student Surface
}

func NewRouter() *Router {
	return &Router{
		admin: Surface{
			Role:    users.RoleAdmin,
			Landing: RouteAdminDashboard,
			Navigation: []NavItem{
				{Name: "Dashboard", Href: RouteDashboard},
				{Name: "Available Courses", Href: RouteAdminCourses},
				{Name: "Students", Href: RouteAdminStudents},
				{Name: "Enrolled Students", Href: RouteAdminEnrolledStudents},
				{Name: "Profile", Href: RouteAdminProfile},
			},
			QuickActions: []NavItem{
				{Name: "Add Course", Href: RouteAdminAddCourse},
				{Name: "Create Student", Href: RouteAdminCreateStudent},
			},
		},
		student: Surface{
			Role:    users.RoleStudent,
			Landing: RouteStudentDashboard,
			Navigation: []NavItem{
				{Name: "Dashboard", Href: RouteDashboard},
				{Name: "Available Courses", Href: RouteStudentCourses},
				{Name: "My Enrolled Courses", Href: RouteStudentMyCourses},
				{Name: "Profile", Href: RouteStudentProfile},
			},
		},
	}
}

// Surface returns the admin surface for admins and the student surface for
// everyone else, including unknown roles.
func (r *Router) Surface(u *users.User) Surface {
	s := r.student
	if u.EffectiveRole() == users.RoleAdmin {
		s = r.admin
	}
	s.Navigation = append([]NavItem(nil), s.Navigation...)
	s.QuickActions = append([]NavItem(nil), s.QuickActions...)
	return s
}

// Resolve maps the role neutral dashboard, and any route the portal does not
// know, onto the role landing route. Known routes are returned unchanged.
func (r *Router) Resolve(path string, u *users.User) string {
	if i := strings.IndexByte(path, '?'); i >= 0 && protectedRoutes[path[:i]] {
		return path
	}
	if path == RouteDashboard || (!protectedRoutes[path] && !publicRoutes[path]) {
		return r.Surface(u).Landing
	}
	return path
}
