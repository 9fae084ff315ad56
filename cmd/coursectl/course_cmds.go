package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/jrsteele09/go-course-portal/portal"
)

func (cli *commandLine) printCoursesUsage() {
	fmt.Fprintln(cli.out, "Usage: courses <command>")
	fmt.Fprintln(cli.out, "  list [-search TERM] [-active true|false] [-ordering FIELD] [-page N]")
	fmt.Fprintln(cli.out, "  active")
	fmt.Fprintln(cli.out, "  get COURSE_ID")
	fmt.Fprintln(cli.out, "  create -name NAME -code CODE -duration MONTHS -credits N [-description TEXT] [-inactive]")
	fmt.Fprintln(cli.out, "  update [-name NAME] [-code CODE] [-duration MONTHS] [-credits N] [-description TEXT] COURSE_ID")
	fmt.Fprintln(cli.out, "  delete COURSE_ID")
	fmt.Fprintln(cli.out, "  students COURSE_ID")
	fmt.Fprintln(cli.out, "  enroll COURSE_ID STUDENT_ID")
	fmt.Fprintln(cli.out, "  unenroll COURSE_ID STUDENT_ID")
	fmt.Fprintln(cli.out, "  activate COURSE_ID")
	fmt.Fprintln(cli.out, "  deactivate COURSE_ID")
}

func (cli *commandLine) courses(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printCoursesUsage()
		return errHelp
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return cli.listCourses(ctx, rest)
	case "active":
		page, err := cli.client.Courses.ListActive(ctx)
		if err != nil {
			return err
		}
		return cli.printCourses(page.Results)
	case "get":
		return cli.withID("courses get", rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			c, err := cli.client.Courses.Get(ctx, courseID)
			if err != nil {
				return err
			}
			return cli.printCourse(c)
		})
	case "create":
		return cli.createCourse(ctx, rest)
	case "update":
		return cli.updateCourse(ctx, rest)
	case "delete":
		return cli.withID("courses delete", rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			if err := cli.client.Courses.Delete(ctx, courseID); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Course deleted successfully.")
			return nil
		})
	case "students":
		return cli.withID("courses students", rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			roster, err := cli.client.Courses.Students(ctx, courseID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s: %d students\n", roster.Course, roster.StudentsCount)
			return cli.printStudentSummaries(roster.Students)
		})
	case "enroll", "unenroll":
		return cli.courseEnrollment(ctx, sub, rest)
	case "activate", "deactivate":
		return cli.withID("courses "+sub, rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			toggle := cli.client.Courses.Activate
			if sub == "deactivate" {
				toggle = cli.client.Courses.Deactivate
			}
			c, err := toggle(ctx, courseID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s is now %s\n", c, cli.activeLabel(c.IsActive))
			return nil
		})
	default:
		cli.printCoursesUsage()
		return errHelp
	}
}

// withID runs fn with the single positional ID argument of a subcommand
func (cli *commandLine) withID(name string, args []string, kind string, fn func(string) error) error {
	fs := newFlagSet(name)
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, kind+"_id")
	if err != nil {
		return err
	}
	return fn(ids[0])
}

func (cli *commandLine) listCourses(ctx context.Context, args []string) error {
	fs := newFlagSet("courses list")
	filter := courses.Filter{PageSize: portal.DefaultPageSize}
	fs.StringVar(&filter.Search, "search", "", "Search course name, code or description.")
	active := fs.String("active", "", "Only list active (true) or inactive (false) courses.")
	fs.StringVar(&filter.Ordering, "ordering", "", "Order by course_name, course_code, course_duration, credits or created_at. Prefix with - to reverse.")
	fs.IntVar(&filter.Page, "page", 1, "Page number.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	if *active != "" {
		b, err := strconv.ParseBool(*active)
		if err != nil {
			return fmt.Errorf("invalid -active value %q: %w", *active, err)
		}
		filter.IsActive = utils.Ptr(b)
	}

	page, err := cli.client.Courses.List(ctx, filter)
	if err != nil {
		return err
	}
	if err := cli.printCourses(page.Results); err != nil {
		return err
	}
	printPager(cli, page, filter.PageSize)
	return nil
}

func courseFlags(name string) (*flag.FlagSet, *courses.Input) {
	fs := newFlagSet(name)
	in := &courses.Input{}
	fs.StringVar(&in.Name, "name", "", "Course name.")
	fs.StringVar(&in.Code, "code", "", "Course code, stored upper case.")
	fs.IntVar(&in.DurationMonths, "duration", 0, "Duration in months (1-72).")
	fs.IntVar(&in.Credits, "credits", 0, "Credits (1-10).")
	fs.StringVar(&in.Description, "description", "", "Description.")
	return fs, in
}

func (cli *commandLine) createCourse(ctx context.Context, args []string) error {
	fs, in := courseFlags("courses create")
	inactive := fs.Bool("inactive", false, "Create the course as inactive.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	in.IsActive = utils.Ptr(!*inactive)

	normalized := in.Normalize()
	if err := normalized.Validate(); err != nil {
		return err
	}
	c, err := cli.client.Courses.Create(ctx, normalized)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Course created: %s (%s)\n", c, c.ID)
	return nil
}

func (cli *commandLine) updateCourse(ctx context.Context, args []string) error {
	fs, in := courseFlags("courses update")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, "course_id")
	if err != nil {
		return err
	}
	courseID, err := parseID("course", ids[0])
	if err != nil {
		return err
	}

	set := setFlags(fs)
	patch := courses.Patch{}
	if set["name"] {
		patch.Name = utils.Ptr(in.Name)
	}
	if set["code"] {
		patch.Code = utils.Ptr(in.Code)
	}
	if set["duration"] {
		patch.DurationMonths = utils.Ptr(in.DurationMonths)
	}
	if set["credits"] {
		patch.Credits = utils.Ptr(in.Credits)
	}
	if set["description"] {
		patch.Description = utils.Ptr(in.Description)
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	c, err := cli.client.Courses.PartialUpdate(ctx, courseID, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Course updated successfully.")
	return cli.printCourse(c)
}

func (cli *commandLine) courseEnrollment(ctx context.Context, sub string, args []string) error {
	fs := newFlagSet("courses " + sub)
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	ids, err := cli.positional(fs, "course_id", "student_id")
	if err != nil {
		return err
	}
	courseID, err := parseID("course", ids[0])
	if err != nil {
		return err
	}
	studentID, err := parseID("student", ids[1])
	if err != nil {
		return err
	}

	change := cli.client.Courses.Enroll
	if sub == "unenroll" {
		change = cli.client.Courses.Unenroll
	}
	receipt, err := change(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s) %s: %s\n", receipt.Name, receipt.StudentNumber, receipt.Course, receipt.EnrollmentStatus)
	return nil
}

func (cli *commandLine) printCourses(list []courses.Course) error {
	if len(list) == 0 {
		fmt.Fprintln(cli.out, "No courses found.")
		return nil
	}
	w := newTable(cli.out)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tMONTHS\tCREDITS\tSTUDENTS\tSTATUS")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n", c.ID, c.Code, c.Name, c.DurationMonths, c.Credits, c.EnrolledStudentsCount, cli.activeLabel(c.IsActive))
	}
	return w.Flush()
}

func (cli *commandLine) printCourse(c *courses.Course) error {
	w := newTable(cli.out)
	fmt.Fprintf(w, "ID:\t%s\n", c.ID)
	fmt.Fprintf(w, "Name:\t%s\n", c.Name)
	fmt.Fprintf(w, "Code:\t%s\n", c.Code)
	fmt.Fprintf(w, "Duration:\t%d months\n", c.DurationMonths)
	fmt.Fprintf(w, "Credits:\t%d\n", c.Credits)
	fmt.Fprintf(w, "Status:\t%s\n", cli.activeLabel(c.IsActive))
	fmt.Fprintf(w, "Enrolled students:\t%d\n", c.EnrolledStudentsCount)
	if c.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", c.Description)
	}
	return w.Flush()
}
