package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-course-portal/students"
)

func (cli *commandLine) printMeUsage() {
	fmt.Fprintln(cli.out, "Usage: me <command>")
	fmt.Fprintln(cli.out, "  show")
	fmt.Fprintln(cli.out, "  update [-enrollment-date YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  enroll COURSE_ID")
	fmt.Fprintln(cli.out, "  courses")
}

func (cli *commandLine) me(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printMeUsage()
		return errHelp
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		st, err := cli.client.Students.MyProfile(ctx)
		if err != nil {
			return err
		}
		return cli.printStudent(st)
	case "update":
		fs := newFlagSet("me update")
		enrollmentDate := fs.String("enrollment-date", "", "New enrollment date (YYYY-MM-DD).")
		if err := cli.parseFlags(fs, rest); err != nil {
			return err
		}
		update, err := studentUpdate(setFlags(fs), "", *enrollmentDate)
		if err != nil {
			return err
		}
		st, err := cli.client.Students.UpdateMyProfile(ctx, update)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Profile updated successfully.")
		return cli.printStudent(st)
	case "enroll":
		return cli.withID("me enroll", rest, "course", func(id string) error {
			courseID, err := parseID("course", id)
			if err != nil {
				return err
			}
			e, err := cli.client.Students.EnrollSelf(ctx, courseID)
			if err != nil {
				return err
			}
			cli.printEnrollmentChange(e)
			return nil
		})
	case "courses":
		st, err := cli.client.Students.MyProfile(ctx)
		if err != nil {
			return err
		}
		return cli.printEnrollmentHistory(ctx, st.ID, students.EnrollmentEnrolled)
	default:
		cli.printMeUsage()
		return errHelp
	}
}
