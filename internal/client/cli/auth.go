package cli

import (
	"context"
	"fmt"
)

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err.Error())
		return err
	}

	a.user = user
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, name, email, password); err != nil {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Registered. You can log in now.")
	return nil
}

// Setup runs first-time account creation. The session location is parked on
// the setup page for the duration, so a stray 401 clears tokens without
// kicking the user off their own just-completed signup; it moves back to the
// root only when the user explicitly finishes.
func (a *App) Setup(ctx context.Context) error {
	a.session.SetLocation("/setup")
	defer a.session.SetLocation("/")

	salon, err := GetSimpleText(a.reader, "Salon name", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Your name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Setup(ctx, salon, name, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Setup unsuccessful: %s\n", err.Error())
		return err
	}

	a.user = user
	fmt.Fprintf(a.out, "Salon created. Logged in as %s\n", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
