package apifake

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/jrsteele09/go-course-portal/users"
	"golang.org/x/crypto/bcrypt"
)

type studentRecord struct {
	id             uuid.UUID
	number         string
	userID         int
	status         students.Status
	enrollmentDate string
	createdAt      time.Time
	updatedAt      time.Time
}

// addStudentRecord must be called with the lock held
func (b *Backend) addStudentRecord(userID int) *studentRecord {
	now := NowTimeFunc().UTC()
	b.studentSeq++
	s := &studentRecord{
		id:             uuid.New(),
		number:         fmt.Sprintf("STU%d%04d", now.Year(), b.studentSeq),
		userID:         userID,
		status:         students.StatusActive,
		enrollmentDate: now.Format(time.DateOnly),
		createdAt:      now,
		updatedAt:      now,
	}
	b.students[s.id] = s
	return s
}

func (b *Backend) studentByUser(userID int) *studentRecord {
	for _, s := range b.students {
		if s.userID == userID {
			return s
		}
	}
	return nil
}

// studentView must be called with at least a read lock held
func (b *Backend) studentView(s *studentRecord) students.Student {
	u := b.accounts[s.userID].user
	view := students.Student{
		ID:             s.id,
		StudentNumber:  s.number,
		FullName:       u.FullName,
		Email:          u.Email,
		Status:         s.status,
		EnrollmentDate: s.enrollmentDate,
		User:           u.ID,
		UserDetails:    &u,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
	for _, e := range b.enrollments {
		if e.Student != s.id {
			continue
		}
		c, ok := b.courses[e.Course]
		if !ok {
			continue
		}
		switch e.Status {
		case students.EnrollmentEnrolled:
			view.Courses = append(view.Courses, c.ID)
			view.ActiveEnrollments = append(view.ActiveEnrollments, b.enrollmentView(e))
			view.ActiveCourses = append(view.ActiveCourses, *c)
			view.TotalCreditsEnrolled += c.Credits
		case students.EnrollmentCompleted:
			if e.CreditsEarned != nil {
				view.TotalCreditsEarned += *e.CreditsEarned
			}
		}
	}
	view.ActiveCoursesCount = len(view.ActiveCourses)
	return view
}

func (b *Backend) studentSummary(s *studentRecord) courses.StudentSummary {
	view := b.studentView(s)
	return courses.StudentSummary{
		StudentID:          view.ID,
		StudentNumber:      view.StudentNumber,
		FullName:           view.FullName,
		Email:              view.Email,
		Status:             string(view.Status),
		EnrollmentDate:     view.EnrollmentDate,
		ActiveCoursesCount: view.ActiveCoursesCount,
	}
}

func (b *Backend) enrollmentView(e *students.Enrollment) students.Enrollment {
	view := *e
	if c, ok := b.courses[e.Course]; ok {
		details := *c
		view.CourseDetails = &details
	}
	return view
}

func (b *Backend) findEnrollment(studentID, courseID uuid.UUID) *students.Enrollment {
	for _, e := range b.enrollments {
		if e.Student == studentID && e.Course == courseID {
			return e
		}
	}
	return nil
}

// enroll must be called with the lock held. A withdrawn enrollment is reactivated.
func (b *Backend) enroll(s *studentRecord, c *courses.Course) (*students.Enrollment, error) {
	if !c.IsActive {
		return nil, fmt.Errorf("Cannot enroll in inactive course")
	}
	e := b.findEnrollment(s.id, c.ID)
	if e != nil && e.Status == students.EnrollmentEnrolled {
		return nil, fmt.Errorf("Student is already enrolled in this course")
	}
	if e == nil {
		e = &students.Enrollment{
			ID:         uuid.New(),
			Student:    s.id,
			Course:     c.ID,
			CourseName: c.Name,
			CourseCode: c.Code,
		}
		b.enrollments = append(b.enrollments, e)
	}
	e.Status = students.EnrollmentEnrolled
	e.EnrollmentDate = NowTimeFunc().UTC()
	return e, nil
}

// unenroll must be called with the lock held
func (b *Backend) unenroll(s *studentRecord, c *courses.Course) (*students.Enrollment, error) {
	e := b.findEnrollment(s.id, c.ID)
	if e == nil || e.Status != students.EnrollmentEnrolled {
		return nil, fmt.Errorf("Student is not enrolled in this course")
	}
	e.Status = students.EnrollmentWithdrawn
	return e, nil
}

// lookupStudent resolves the {id} route variable and applies owner-or-admin access.
// Must be called with at least a read lock held.
func (b *Backend) lookupStudent(w http.ResponseWriter, r *http.Request, current *users.User) (*studentRecord, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	s, found := b.students[id]
	if err != nil || !found {
		writeJSON(w, http.StatusNotFound, errorBody("Student not found"))
		return nil, false
	}
	if !current.IsAdmin() && s.userID != current.ID {
		writeJSON(w, http.StatusForbidden, errorBody("Permission denied"))
		return nil, false
	}
	return s, true
}

// visibleStudents applies the role filter: students only ever see themselves
func (b *Backend) visibleStudents(current *users.User) []*studentRecord {
	list := make([]*studentRecord, 0, len(b.students))
	for _, s := range b.students {
		if current.IsAdmin() || s.userID == current.ID {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].number < list[j].number })
	return list
}

func (b *Backend) listStudents(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	status := q.Get("status")
	course := q.Get("course")

	b.lock.RLock()
	defer b.lock.RUnlock()

	results := []students.Student{}
	for _, s := range b.visibleStudents(current) {
		u := b.accounts[s.userID].user
		if search != "" && !containsAny(search, s.number, u.Username, u.FirstName, u.LastName, u.Email) {
			continue
		}
		if status != "" && string(s.status) != status {
			continue
		}
		view := b.studentView(s)
		if course != "" {
			courseID, err := uuid.Parse(course)
			if err != nil || !view.IsEnrolledIn(courseID) {
				continue
			}
		}
		results = append(results, view)
	}

	if q.Get("ordering") == "-student_number" {
		sort.SliceStable(results, func(i, j int) bool { return results[i].StudentNumber > results[j].StudentNumber })
	}
	writeJSON(w, http.StatusOK, paginate(r, results))
}

func containsAny(term string, values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func (b *Backend) listActiveStudents(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)

	b.lock.RLock()
	defer b.lock.RUnlock()

	results := []students.Student{}
	for _, s := range b.visibleStudents(current) {
		if s.status == students.StatusActive {
			results = append(results, b.studentView(s))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (b *Backend) createStudent(w http.ResponseWriter, r *http.Request) {
	var in students.Input
	if !decode(w, r, &in) {
		return
	}

	fields := map[string]any{}
	for name, value := range map[string]string{
		"username":   in.Username,
		"email":      in.Email,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"password":   in.Password,
	} {
		if value == "" {
			fields[name] = []string{"This field is required."}
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		fields["password"] = []string{err.Error()}
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, taken := b.usernames[in.Username]; taken && in.Username != "" {
		fields["username"] = []string{"A user with that username already exists."}
	}

	var course *courses.Course
	if in.Course != nil {
		c, ok := b.courses[*in.Course]
		if !ok || !c.IsActive {
			fields["course"] = []string{"Course not found or is not active"}
		}
		course = c
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	u := b.insertUser(users.User{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        users.RoleStudent,
		Phone:       in.PhoneNumber,
		DateOfBirth: in.DateOfBirth,
		Address:     in.Address,
	}, hash)
	s := b.addStudentRecord(u.ID)
	if in.EnrollmentDate != "" {
		s.enrollmentDate = in.EnrollmentDate
	}
	if course != nil {
		if _, err := b.enroll(s, course); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Student created successfully",
		"student": b.studentView(s),
	})
}

func (b *Backend) getStudent(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)

	b.lock.RLock()
	defer b.lock.RUnlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.studentView(s))
}

func applyStudentUpdate(s *studentRecord, update students.Update) map[string]any {
	if update.Status != nil {
		if _, err := students.ParseStatus(string(*update.Status)); err != nil {
			return map[string]any{"status": []string{fmt.Sprintf("\"%s\" is not a valid choice.", *update.Status)}}
		}
		s.status = *update.Status
	}
	if update.EnrollmentDate != nil {
		s.enrollmentDate = *update.EnrollmentDate
	}
	s.updatedAt = NowTimeFunc().UTC()
	return nil
}

func (b *Backend) updateStudent(w http.ResponseWriter, r *http.Request) {
	var update students.Update
	if !decode(w, r, &update) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	if fields := applyStudentUpdate(s, update); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Student updated successfully",
		"student": b.studentView(s),
	})
}

func (b *Backend) deleteStudent(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	delete(b.students, s.id)

	kept := b.enrollments[:0]
	for _, e := range b.enrollments {
		if e.Student != s.id {
			kept = append(kept, e)
		}
	}
	b.enrollments = kept
	writeJSON(w, http.StatusNoContent, nil)
}

type courseIDBody struct {
	CourseID string `json:"course_id"`
}

func (b *Backend) studentEnroll(w http.ResponseWriter, r *http.Request) {
	b.studentEnrollment(w, r, true)
}

func (b *Backend) studentUnenroll(w http.ResponseWriter, r *http.Request) {
	b.studentEnrollment(w, r, false)
}

func (b *Backend) studentEnrollment(w http.ResponseWriter, r *http.Request, enroll bool) {
	var body courseIDBody
	if !decode(w, r, &body) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	b.writeEnrollmentChange(w, s, body.CourseID, enroll)
}

// writeEnrollmentChange must be called with the lock held
func (b *Backend) writeEnrollmentChange(w http.ResponseWriter, s *studentRecord, rawCourseID string, enroll bool) {
	courseID, err := uuid.Parse(rawCourseID)
	c, found := b.courses[courseID]
	if err != nil || !found || (enroll && !c.IsActive) {
		msg := "Course not found"
		if enroll {
			msg = "Course not found or is not active"
		}
		writeJSON(w, http.StatusBadRequest, fieldError("course_id", msg))
		return
	}

	if !enroll {
		e, err := b.unenroll(s, c)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, nonField(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Student unenrolled successfully",
			"enrollment": b.enrollmentView(e),
		})
		return
	}

	e, err := b.enroll(s, c)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, nonField(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Student enrolled successfully",
		"enrollment": b.enrollmentView(e),
	})
}

func (b *Backend) studentEnrollments(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)
	status := r.URL.Query().Get("status")

	b.lock.RLock()
	defer b.lock.RUnlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}

	history := students.EnrollmentHistory{
		StudentID:   s.id,
		StudentName: b.accounts[s.userID].user.FullName,
		Enrollments: []students.Enrollment{},
	}
	for _, e := range b.enrollments {
		if e.Student != s.id {
			continue
		}
		history.TotalEnrollments++
		if e.Status == students.EnrollmentEnrolled {
			history.ActiveEnrollments++
		}
		if status != "" && string(e.Status) != status {
			continue
		}
		history.Enrollments = append(history.Enrollments, b.enrollmentView(e))
	}
	writeJSON(w, http.StatusOK, history)
}

func (b *Backend) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	status, err := students.ParseStatus(body.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid status"))
		return
	}
	s.status = status
	s.updatedAt = NowTimeFunc().UTC()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Student status changed to " + string(status),
		"student": b.studentView(s),
	})
}

func (b *Backend) changeCourse(w http.ResponseWriter, r *http.Request) {
	var body courseIDBody
	if !decode(w, r, &body) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.lookupStudent(w, r, current)
	if !ok {
		return
	}
	courseID, err := uuid.Parse(body.CourseID)
	c, found := b.courses[courseID]
	if err != nil || !found || !c.IsActive {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found or inactive"))
		return
	}

	if e := b.findEnrollment(s.id, c.ID); e != nil && e.Status == students.EnrollmentEnrolled {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Student is already enrolled in this course",
			"student": b.studentView(s),
		})
		return
	}
	e, err := b.enroll(s, c)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Student enrolled in " + c.Name,
		"student":    b.studentView(s),
		"enrollment": b.enrollmentView(e),
	})
}

func (b *Backend) studentsByCourse(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)
	raw := r.URL.Query().Get("course_id")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("course_id parameter is required"))
		return
	}
	courseID, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("course_id must be a valid UUID"))
		return
	}

	b.lock.RLock()
	defer b.lock.RUnlock()

	summaries := []courses.StudentSummary{}
	for _, e := range b.enrollments {
		if e.Course != courseID || (e.Status != students.EnrollmentEnrolled && e.Status != students.EnrollmentCompleted) {
			continue
		}
		s, ok := b.students[e.Student]
		if !ok || (!current.IsAdmin() && s.userID != current.ID) {
			continue
		}
		summaries = append(summaries, b.studentSummary(s))
	}
	writeJSON(w, http.StatusOK, students.CourseRoster{
		CourseID:      courseID,
		StudentsCount: len(summaries),
		Students:      summaries,
	})
}

func (b *Backend) myProfile(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	if s := b.studentByUser(current.ID); s != nil {
		writeJSON(w, http.StatusOK, b.studentView(s))
		return
	}
	if current.IsAdmin() {
		writeJSON(w, http.StatusNotFound, errorBody("Student profile not found for this user"))
		return
	}
	s := b.addStudentRecord(current.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Student profile created automatically",
		"data":    b.studentView(s),
	})
}

func (b *Backend) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	var update students.Update
	if !decode(w, r, &update) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s := b.studentByUser(current.ID)
	if s == nil {
		writeJSON(w, http.StatusNotFound, errorBody("Student profile not found for this user"))
		return
	}
	if fields := applyStudentUpdate(s, update); fields != nil {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"student": b.studentView(s),
	})
}

func (b *Backend) enrollSelf(w http.ResponseWriter, r *http.Request) {
	var body courseIDBody
	if !decode(w, r, &body) {
		return
	}
	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	s := b.studentByUser(current.ID)
	if s == nil {
		writeJSON(w, http.StatusNotFound, errorBody("Student profile not found for this user"))
		return
	}
	b.writeEnrollmentChange(w, s, body.CourseID, true)
}
