package apifake

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-course-portal/api"
)

const uuidPattern = "{id:[0-9a-fA-F-]{36}}"

func (b *Backend) routes() *mux.Router {
	r := mux.NewRouter()

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return ChainMiddleware(h, b.RecordingMiddleware)
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return ChainMiddleware(h, b.RecordingMiddleware, b.RequireAuth)
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return ChainMiddleware(h, b.RecordingMiddleware, b.RequireAuth, b.RequireAdmin)
	}

	// Auth
	r.HandleFunc(api.PathLogin, public(b.login)).Methods(http.MethodPost)
	r.HandleFunc(api.PathRegister, public(b.register)).Methods(http.MethodPost)
	r.HandleFunc(api.PathTokenRefresh, public(b.refresh)).Methods(http.MethodPost)
	r.HandleFunc(api.PathLogout, authed(b.logout)).Methods(http.MethodPost)
	r.HandleFunc(api.PathProfile, authed(b.profile)).Methods(http.MethodGet)
	r.HandleFunc(api.PathProfile, authed(b.updateProfile)).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc(api.PathChangePassword, authed(b.changePassword)).Methods(http.MethodPost)
	r.HandleFunc(api.PathUsers, authed(b.listUsers)).Methods(http.MethodGet)

	// Courses
	r.HandleFunc(api.PathActiveCourses, authed(b.listActiveCourses)).Methods(http.MethodGet)
	r.HandleFunc(api.PathCourses, authed(b.listCourses)).Methods(http.MethodGet)
	r.HandleFunc(api.PathCourses, admin(b.createCourseHandler)).Methods(http.MethodPost)
	r.HandleFunc(api.PathCourses+uuidPattern+"/", authed(b.getCourse)).Methods(http.MethodGet)
	r.HandleFunc(api.PathCourses+uuidPattern+"/", admin(b.updateCourse)).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc(api.PathCourses+uuidPattern+"/", admin(b.deleteCourse)).Methods(http.MethodDelete)
	r.HandleFunc(api.PathCourses+uuidPattern+"/students/", authed(b.courseStudents)).Methods(http.MethodGet)
	r.HandleFunc(api.PathCourses+uuidPattern+"/enroll/", admin(b.courseEnroll)).Methods(http.MethodPost)
	r.HandleFunc(api.PathCourses+uuidPattern+"/unenroll/", admin(b.courseUnenroll)).Methods(http.MethodPost)
	r.HandleFunc(api.PathCourses+uuidPattern+"/activate/", admin(b.setCourseActive(true))).Methods(http.MethodPost)
	r.HandleFunc(api.PathCourses+uuidPattern+"/deactivate/", admin(b.setCourseActive(false))).Methods(http.MethodPost)

	// Students
	r.HandleFunc(api.PathActiveStudents, authed(b.listActiveStudents)).Methods(http.MethodGet)
	r.HandleFunc(api.PathStudentsByCourse, authed(b.studentsByCourse)).Methods(http.MethodGet)
	r.HandleFunc(api.PathMyProfile, authed(b.myProfile)).Methods(http.MethodGet)
	r.HandleFunc(api.PathMyProfile, authed(b.updateMyProfile)).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc(api.PathMyProfileEnroll, authed(b.enrollSelf)).Methods(http.MethodPost)
	r.HandleFunc(api.PathStudents, authed(b.listStudents)).Methods(http.MethodGet)
	r.HandleFunc(api.PathStudents, admin(b.createStudent)).Methods(http.MethodPost)
	r.HandleFunc(api.PathStudents+uuidPattern+"/", authed(b.getStudent)).Methods(http.MethodGet)
	r.HandleFunc(api.PathStudents+uuidPattern+"/", authed(b.updateStudent)).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc(api.PathStudents+uuidPattern+"/", admin(b.deleteStudent)).Methods(http.MethodDelete)
	r.HandleFunc(api.PathStudents+uuidPattern+"/enroll/", authed(b.studentEnroll)).Methods(http.MethodPost)
	r.HandleFunc(api.PathStudents+uuidPattern+"/enroll/", authed(b.studentUnenroll)).Methods(http.MethodDelete)
	r.HandleFunc(api.PathStudents+uuidPattern+"/enrollments/", authed(b.studentEnrollments)).Methods(http.MethodGet)
	r.HandleFunc(api.PathStudents+uuidPattern+"/change-status/", admin(b.changeStatus)).Methods(http.MethodPost)
	r.HandleFunc(api.PathStudents+uuidPattern+"/change-course/", admin(b.changeCourse)).Methods(http.MethodPost)

	r.NotFoundHandler = ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
	}, b.RecordingMiddleware)
	return r
}
