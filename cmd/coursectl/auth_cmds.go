package main

import (
	"context"
	"fmt"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/jrsteele09/go-course-portal/portal"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/users"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("username", "", "The username to sign in with.")
	password := fs.String("password", "", "The password. Prompted for when omitted.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	if *username == "" {
		cli.flagUsage(fs)
		return errHelp
	}
	if *password == "" {
		pwd, err := cli.promptPassword("Enter password")
		if err != nil {
			return err
		}
		*password = pwd
	}

	creds := users.Credentials{Username: *username, Password: *password}
	if err := creds.Validate(); err != nil {
		return err
	}
	u, err := cli.manager.Login(ctx, creds)
	if err != nil {
		return err
	}
	surface := cli.router.Surface(u)
	fmt.Fprintf(cli.out, "Welcome back, %s! (%s)\n", u.DisplayName(), cli.paint(roleColors[surface.Role], string(surface.Role)))
	fmt.Fprintf(cli.out, "Landing page: %s\n", cli.router.Resolve(portal.RouteDashboard, u))
	return nil
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	reg := users.Registration{}
	fs.StringVar(&reg.Username, "username", "", "Username for the new account.")
	fs.StringVar(&reg.Email, "email", "", "Email address.")
	fs.StringVar(&reg.FirstName, "first", "", "First name.")
	fs.StringVar(&reg.LastName, "last", "", "Last name.")
	fs.StringVar(&reg.Phone, "phone", "", "Phone number.")
	fs.StringVar(&reg.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD).")
	fs.StringVar(&reg.Address, "address", "", "Postal address.")
	role := fs.String("role", string(users.RoleStudent), "Account role: student or admin.")
	password := fs.String("password", "", "The password. Prompted for (twice) when omitted.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}
	if reg.Username == "" {
		cli.flagUsage(fs)
		return errHelp
	}
	reg.Role = users.RoleType(*role)

	if *password != "" {
		reg.Password, reg.PasswordConfirm = *password, *password
	} else {
		var err error
		if reg.Password, err = cli.promptPassword("Enter password"); err != nil {
			return err
		}
		if reg.PasswordConfirm, err = cli.promptPassword("Confirm password"); err != nil {
			return err
		}
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	u, err := cli.manager.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Registration successful. Signed in as %s.\n", u.Username)
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	cli.manager.Logout(ctx)
	fmt.Fprintln(cli.out, "Signed out.")
	return nil
}

func (cli *commandLine) whoami(u *users.User, surface portal.Surface) error {
	w := newTable(cli.out)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Name:\t%s\n", u.DisplayName())
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Role:\t%s\n", cli.paint(roleColors[surface.Role], string(u.Role)))
	if remaining := tokens.LoadPair(cli.client.Store()).Remaining(); remaining > 0 {
		fmt.Fprintf(w, "Access token valid for:\t%s\n", remaining.Round(time.Second))
	}
	return w.Flush()
}

func (cli *commandLine) nav(args []string, u *users.User, surface portal.Surface) error {
	fs := newFlagSet("nav")
	path := fs.String("path", "", "Resolve PATH for the signed in user instead of listing the menu.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}

	if *path != "" {
		resolved := cli.router.Resolve(*path, u)
		if !surface.Allows(resolved) {
			fmt.Fprintf(cli.out, "%s is not part of the %s surface\n", resolved, surface.Role)
			return nil
		}
		fmt.Fprintf(cli.out, "%s\t%s\n", resolved, surface.Title(resolved))
		return nil
	}

	w := newTable(cli.out)
	fmt.Fprintf(w, "Landing\t%s\n", surface.Landing)
	for _, item := range surface.Navigation {
		fmt.Fprintf(w, "%s\t%s\n", item.Name, item.Href)
	}
	for _, action := range surface.QuickActions {
		fmt.Fprintf(w, "+ %s\t%s\n", action.Name, action.Href)
	}
	return w.Flush()
}

func (cli *commandLine) passwd(ctx context.Context) error {
	change := users.PasswordChange{}
	var err error
	if change.OldPassword, err = cli.promptPassword("Current password"); err != nil {
		return err
	}
	if change.NewPassword, err = cli.promptPassword("New password"); err != nil {
		return err
	}
	if change.ConfirmPassword, err = cli.promptPassword("Confirm new password"); err != nil {
		return err
	}
	if err := cli.manager.ChangePassword(ctx, change); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Password changed successfully.")
	return nil
}

func (cli *commandLine) profile(ctx context.Context, args []string) error {
	fs := newFlagSet("profile")
	email := fs.String("email", "", "New email address.")
	first := fs.String("first", "", "New first name.")
	last := fs.String("last", "", "New last name.")
	phone := fs.String("phone", "", "New phone number.")
	dob := fs.String("dob", "", "New date of birth (YYYY-MM-DD).")
	address := fs.String("address", "", "New postal address.")
	if err := cli.parseFlags(fs, args); err != nil {
		return err
	}

	set := setFlags(fs)
	if len(set) == 0 {
		u, err := cli.manager.User()
		if err != nil {
			return err
		}
		return cli.printUser(u)
	}

	update := users.ProfileUpdate{}
	if set["email"] {
		update.Email = utils.Ptr(*email)
	}
	if set["first"] {
		update.FirstName = utils.Ptr(*first)
	}
	if set["last"] {
		update.LastName = utils.Ptr(*last)
	}
	if set["phone"] {
		update.Phone = utils.Ptr(*phone)
	}
	if set["dob"] {
		update.DateOfBirth = utils.Ptr(*dob)
	}
	if set["address"] {
		update.Address = utils.Ptr(*address)
	}
	if err := update.Validate(); err != nil {
		return err
	}

	u, err := cli.manager.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Profile updated successfully.")
	return cli.printUser(u)
}

func (cli *commandLine) printUser(u *users.User) error {
	w := newTable(cli.out)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "First name:\t%s\n", u.FirstName)
	fmt.Fprintf(w, "Last name:\t%s\n", u.LastName)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Phone:\t%s\n", u.Phone)
	fmt.Fprintf(w, "Date of birth:\t%s\n", u.DateOfBirth)
	fmt.Fprintf(w, "Address:\t%s\n", u.Address)
	return w.Flush()
}

func (cli *commandLine) version() {
	banner := figure.NewFigure(cli.appName, "cybermedium", true)
	fmt.Fprintln(cli.out, banner.String())
	fmt.Fprintf(cli.out, "%s %s\n", binaryName, Version)
}
