package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/jrsteele09/go-course-portal/portal"
	"github.com/jrsteele09/go-course-portal/students"
)

// searchPageSize is how many students are fetched for client side search
const searchPageSize = 100

func (cli *commandLine) printStudentsUsage() {
	fmt.Fprintln(cli.out, "Usage: students <command>")
	fmt.Fprintln(cli.out, "  list [-search TERM] [-status STATUS] [-course COURSE_ID] [-ordering FIELD] [-page N]")
	fmt.Fprintln(cli.out, "  active")
	fmt.Fprintln(cli.out, "  search [-status STATUS] TERM")
	fmt.Fprintln(cli.out, "  by-course COURSE_ID")
	fmt.Fprintln(cli.out, "  get STUDENT_ID")
	fmt.Fprintln(cli.out, "  create -username USERNAME -email EMAIL -first NAME -last NAME [-password PASSWORD] [-course COURSE_ID]")
	fmt.Fprintln(cli.out, "  update [-status STATUS] [-enrollment-date YYYY-MM-DD] STUDENT_ID")
	fmt.Fprintln(cli.out, "  status STUDENT_ID STATUS")
	fmt.Fprintln(cli.out, "  delete STUDENT_ID")
	fmt.Fprintln(cli.out, "  enroll STUDENT_ID COURSE_ID")
	fmt.Fprintln(cli.out, "  unenroll STUDENT_ID COURSE_ID")
	fmt.Fprintln(cli.out, "  enrollments [-status STATUS] STUDENT_ID")
}

func (cli *commandLine) students(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printStudentsUsage()
		return errHelp
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return cli.listStudents(ctx, rest)
	case "active":
		page, err := cli.client.Students.ListActive(ctx)
		if err != nil {
			return err
		}
		return cli.printStudents(page.Results)
	case "search":
		return cli.searchStudents(ctx, rest)
	case "by-course":
		return cli.withID("students by-course", rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			roster, err := cli.client.Students.ListByCourse(ctx, courseID)
			if err != nil {
				return err
			}
			return cli.printStudentSummaries(roster.Students)
		})
	case "get":
		return cli.withID("students get", rest, "student", func(id string) error {
			studentID, err := parseID("student", id)
			if err != nil {
				return err
			}
			st, err := cli.client.Students.Get(ctx, studentID)
			if err != nil {
				return err
			}
			return cli.printStudent(st)
		})
	case "create":
		return cli.createStudent(ctx, rest)
	case "update":
		return cli.updateStudent(ctx, rest)
	case "status":
		return cli.changeStudentStatus(ctx, rest)
	case "delete":
		return cli.withID("students delete", rest, "student", func(id string) error {
			studentID, err := parseID("student", id)
			if err != nil {
				return err
			}
			if err := cli.client.Students.Delete(ctx, studentID); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Student deleted successfully.")
			return nil
		})
	case "enroll", "unenroll":
		return cli.studentEnrollment(ctx, sub, rest)
	case "enrollments":
		return cli.studentEnrollments(ctx, rest)
	default:
		cli.printStudentsUsage()
		return errHelp
	}
}

func (cli *commandLine) listStudents(ctx context.Context, args []string) error {
	fs := newFlagSet("students list")
	filter := students.Filter{PageSize: portal.DefaultPageSize}
	fs.StringVar(&filter.Search, "search", "", "Search names, student number or email.")
	status := fs.String("status", "", "Only list students with this status.")
	course := fs.String("course", "", "Only list students enrolled in this course.")
	fs.StringVar(&filter.Ordering, "ordering", "", "Order by student_number, enrollment_date, created_at or user__first_name.")
	fs.IntVar(&filter.Page, "page", 1, "Page number.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	if *status != "" {
		s, err := students.ParseStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = s
	}
	if *course != "" {
		courseID, err := parseID("course", *course)
		if err != nil {
			return err
		}
		filter.Course = courseID
	}

	page, err := cli.client.Students.List(ctx, filter)
	if err != nil {
		return err
	}
	if err := cli.printStudents(page.Results); err != nil {
		return err
	}
	printPager(cli, page, filter.PageSize)
	return nil
}

// searchStudents filters locally, matching names, number and email
func (cli *commandLine) searchStudents(ctx context.Context, args []string) error {
	fs := newFlagSet("students search")
	status := fs.String("status", "", "Only keep students with this status.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	terms, err := cli.positional(fs, "term")
	if err != nil {
		return err
	}
	var st students.Status
	if *status != "" {
		if st, err = students.ParseStatus(*status); err != nil {
			return err
		}
	}

	page, err := cli.client.Students.List(ctx, students.Filter{PageSize: searchPageSize})
	if err != nil {
		return err
	}
	return cli.printStudents(students.Search(page.Results, terms[0], st))
}

func (cli *commandLine) createStudent(ctx context.Context, args []string) error {
	fs := newFlagSet("students create")
	in := students.Input{}
	fs.StringVar(&in.Username, "username", "", "Username for the student's account.")
	fs.StringVar(&in.Email, "email", "", "Email address.")
	fs.StringVar(&in.FirstName, "first", "", "First name.")
	fs.StringVar(&in.LastName, "last", "", "Last name.")
	fs.StringVar(&in.Password, "password", "", "Initial password. Prompted for when omitted.")
	fs.StringVar(&in.PhoneNumber, "phone", "", "Phone number.")
	fs.StringVar(&in.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD).")
	fs.StringVar(&in.Address, "address", "", "Postal address.")
	fs.StringVar(&in.EnrollmentDate, "enrollment-date", "", "Enrollment date (YYYY-MM-DD).")
	course := fs.String("course", "", "Enroll the new student in this course.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	if in.Username == "" {
		cli.flagUsage(fs)
		return errHelp
	}
	if *course != "" {
		courseID, err := parseID("course", *course)
		if err != nil {
			return err
		}
		in.Course = &courseID
	}
	if in.Password == "" {
		pwd, err := cli.promptPassword("Initial password")
		if err != nil {
			return err
		}
		in.Password = pwd
	}
	if err := in.Validate(); err != nil {
		return err
	}

	st, err := cli.client.Students.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Student created: %s (%s)\n", st, st.ID)
	return nil
}

func (cli *commandLine) updateStudent(ctx context.Context, args []string) error {
	fs := newFlagSet("students update")
	status := fs.String("status", "", "New status.")
	enrollmentDate := fs.String("enrollment-date", "", "New enrollment date (YYYY-MM-DD).")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, "student_id")
	if err != nil {
		return err
	}
	studentID, err := parseID("student", ids[0])
	if err != nil {
		return err
	}

	update, err := studentUpdate(setFlags(fs), *status, *enrollmentDate)
	if err != nil {
		return err
	}
	st, err := cli.client.Students.PartialUpdate(ctx, studentID, update)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Student updated successfully.")
	return cli.printStudent(st)
}

func studentUpdate(set map[string]bool, status, enrollmentDate string) (students.Update, error) {
	update := students.Update{}
	if set["status"] {
		s, err := students.ParseStatus(status)
		if err != nil {
			return update, err
		}
		update.Status = &s
	}
	if set["enrollment-date"] {
		update.EnrollmentDate = utils.PtrOrNil(enrollmentDate)
	}
	return update, update.Validate()
}

func (cli *commandLine) changeStudentStatus(ctx context.Context, args []string) error {
	fs := newFlagSet("students status")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	positional, err := cli.positional(fs, "student_id", "status")
	if err != nil {
		return err
	}
	studentID, err := parseID("student", positional[0])
	if err != nil {
		return err
	}
	status, err := students.ParseStatus(positional[1])
	if err != nil {
		return err
	}

	st, err := cli.client.Students.ChangeStatus(ctx, studentID, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", st, cli.paint(statusColors[st.Status], string(st.Status)))
	return nil
}

func (cli *commandLine) studentEnrollment(ctx context.Context, sub string, args []string) error {
	fs := newFlagSet("students " + sub)
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, "student_id", "course_id")
	if err != nil {
		return err
	}
	studentID, err := parseID("student", ids[0])
	if err != nil {
		return err
	}
	courseID, err := parseID("course", ids[1])
	if err != nil {
		return err
	}

	change := cli.client.Students.Enroll
	if sub == "unenroll" {
		change = cli.client.Students.Unenroll
	}
	e, err := change(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	cli.printEnrollmentChange(e)
	return nil
}

func (cli *commandLine) printEnrollmentChange(e *students.Enrollment) {
	fmt.Fprintf(cli.out, "%s %s: %s\n", e.CourseCode, e.CourseName, cli.paint(enrollmentColors[e.Status], string(e.Status)))
}

func (cli *commandLine) studentEnrollments(ctx context.Context, args []string) error {
	fs := newFlagSet("students enrollments")
	status := fs.String("status", "", "Only show enrollments with this status.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, "student_id")
	if err != nil {
		return err
	}
	studentID, err := parseID("student", ids[0])
	if err != nil {
		return err
	}
	return cli.printEnrollmentHistory(ctx, studentID, students.EnrollmentStatus(*status))
}

func (cli *commandLine) printEnrollmentHistory(ctx context.Context, studentID uuid.UUID, status students.EnrollmentStatus) error {
	history, err := cli.client.Students.Enrollments(ctx, studentID, status)
	if err != nil {
		return err
	}
	if len(history.Enrollments) == 0 {
		fmt.Fprintln(cli.out, "No enrollments found.")
		return nil
	}

	w := newTable(cli.out)
	fmt.Fprintln(w, "COURSE\tCODE\tENROLLED\tSTATUS\tGRADE")
	for _, e := range history.Enrollments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.CourseName, e.CourseCode, e.EnrollmentDate.Format("2006-01-02"), cli.paint(enrollmentColors[e.Status], string(e.Status)), e.Grade)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d enrollments, %d active\n", history.TotalEnrollments, history.ActiveEnrollments)
	return nil
}

func (cli *commandLine) printStudents(list []students.Student) error {
	if len(list) == 0 {
		fmt.Fprintln(cli.out, "No students found.")
		return nil
	}
	w := newTable(cli.out)
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tEMAIL\tENROLLED\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.StudentNumber, s.FullName, s.Email, s.EnrollmentDate, cli.paint(statusColors[s.Status], string(s.Status)))
	}
	return w.Flush()
}

func (cli *commandLine) printStudentSummaries(list []courses.StudentSummary) error {
	if len(list) == 0 {
		fmt.Fprintln(cli.out, "No students enrolled.")
		return nil
	}
	w := newTable(cli.out)
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tEMAIL\tENROLLED\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.StudentID, s.StudentNumber, s.FullName, s.Email, s.EnrollmentDate, s.Status)
	}
	return w.Flush()
}

func (cli *commandLine) printStudent(s *students.Student) error {
	w := newTable(cli.out)
	fmt.Fprintf(w, "ID:\t%s\n", s.ID)
	fmt.Fprintf(w, "Student number:\t%s\n", s.StudentNumber)
	fmt.Fprintf(w, "Name:\t%s\n", s.FullName)
	fmt.Fprintf(w, "Email:\t%s\n", s.Email)
	fmt.Fprintf(w, "Status:\t%s\n", cli.paint(statusColors[s.Status], string(s.Status)))
	fmt.Fprintf(w, "Enrollment date:\t%s\n", s.EnrollmentDate)
	fmt.Fprintf(w, "Credits enrolled:\t%d\n", s.TotalCreditsEnrolled)
	fmt.Fprintf(w, "Credits earned:\t%d\n", s.TotalCreditsEarned)
	for _, c := range s.ActiveCourses {
		fmt.Fprintf(w, "Course:\t%s\n", c)
	}
	return w.Flush()
}
