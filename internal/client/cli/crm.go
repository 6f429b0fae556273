package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avoskres/salondesk/internal/client/models"
)

func (a *App) ListClients(ctx context.Context) error {
	customers, err := a.crmService.Customers(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}

	if len(customers) == 0 {
		fmt.Fprintln(a.out, "No clients yet.")
		return nil
	}
	for _, c := range customers {
		fmt.Fprintf(a.out, "%s  %-25s %-25s %s\n", c.ID, c.Name, c.Email, c.Phone)
	}
	return nil
}

func (a *App) AddClient(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Client name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Client email", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Client phone (optional)", a.out)
	if err != nil {
		return err
	}

	created, err := a.crmService.CreateCustomer(ctx, models.Customer{
		Name:  name,
		Email: email,
		Phone: phone,
	})
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Created client %s\n", created.ID)
	return nil
}

func (a *App) ListAppointments(ctx context.Context) error {
	day, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", a.out)
	if err != nil {
		return err
	}

	date := time.Now()
	if day != "" {
		date, err = time.Parse("2006-01-02", day)
		if err != nil {
			fmt.Fprintln(a.out, "Invalid date.")
			return err
		}
	}

	appts, err := a.crmService.Appointments(ctx, date)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}

	if len(appts) == 0 {
		fmt.Fprintln(a.out, "No appointments.")
		return nil
	}
	for _, ap := range appts {
		fmt.Fprintf(a.out, "%s  %s–%s  client=%s service=%s [%s]\n",
			ap.ID, ap.StartsAt.Format("15:04"), ap.EndsAt.Format("15:04"),
			ap.CustomerID, ap.ServiceID, ap.Status)
	}
	return nil
}

func (a *App) BookAppointment(ctx context.Context) error {
	customerID, err := GetSimpleText(a.reader, "Client ID", a.out)
	if err != nil {
		return err
	}
	serviceID, err := GetSimpleText(a.reader, "Service ID", a.out)
	if err != nil {
		return err
	}
	start, err := GetSimpleText(a.reader, "Start (YYYY-MM-DD HH:MM)", a.out)
	if err != nil {
		return err
	}
	startsAt, err := time.Parse("2006-01-02 15:04", start)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid time.")
		return err
	}

	booked, err := a.crmService.Book(ctx, models.Appointment{
		CustomerID: customerID,
		ServiceID:  serviceID,
		StartsAt:   startsAt,
	})
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Booked %s at %s\n", booked.ID, booked.StartsAt.Format("2006-01-02 15:04"))
	return nil
}

func (a *App) ListCatalog(ctx context.Context) error {
	items, err := a.crmService.Catalog(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	for _, s := range items {
		fmt.Fprintf(a.out, "%s  %-30s %3d min  %s\n", s.ID, s.Name, s.DurationMin, s.Price.StringFixed(2))
	}
	return nil
}

func (a *App) ListStaff(ctx context.Context) error {
	staff, err := a.crmService.Staff(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	for _, m := range staff {
		fmt.Fprintf(a.out, "%s  %-25s %-10s %s\n", m.ID, m.Name, m.Role, m.Email)
	}
	return nil
}

func (a *App) Upload(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Path to file", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	defer f.Close()

	url, err := a.crmService.UploadAvatar(ctx, filepath.Base(path), f)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Uploaded: %s\n", url)
	return nil
}
