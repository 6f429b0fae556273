package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/avoskres/salondesk/internal/client/api"
	"github.com/avoskres/salondesk/internal/client/models"
)

// CRMService is the thin data layer over the CRM resources: customers,
// appointments and the service catalog. CRUD glue only; all auth concerns
// live below it in the API client.
type CRMService interface {
	Customers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	Appointments(ctx context.Context, day time.Time) ([]models.Appointment, error)
	Book(ctx context.Context, a models.Appointment) (*models.Appointment, error)
	Cancel(ctx context.Context, id string) error

	Catalog(ctx context.Context) ([]models.SalonService, error)
	Staff(ctx context.Context) ([]models.StaffMember, error)

	UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error)
}

type crmService struct {
	client *api.Client
}

// NewCRMService constructs a CRMService bound to the given API client.
func NewCRMService(client *api.Client) CRMService {
	return &crmService{client: client}
}

func (s *crmService) Customers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := s.client.Get(ctx, "/clients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *crmService) CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	var out models.Customer
	if err := s.client.Post(ctx, "/clients", c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *crmService) UpdateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	var out models.Customer
	if err := s.client.Put(ctx, "/clients/"+url.PathEscape(c.ID), c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *crmService) DeleteCustomer(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/clients/"+url.PathEscape(id), nil)
}

// Appointments lists bookings for the given calendar day.
func (s *crmService) Appointments(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	path := fmt.Sprintf("/appointments?date=%s", day.Format("2006-01-02"))
	if err := s.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *crmService) Book(ctx context.Context, a models.Appointment) (*models.Appointment, error) {
	var out models.Appointment
	if err := s.client.Post(ctx, "/appointments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *crmService) Cancel(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/appointments/"+url.PathEscape(id), nil)
}

func (s *crmService) Catalog(ctx context.Context) ([]models.SalonService, error) {
	var out []models.SalonService
	if err := s.client.Get(ctx, "/services", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Staff lists the salon's bookable employees.
func (s *crmService) Staff(ctx context.Context) ([]models.StaffMember, error) {
	var out []models.StaffMember
	if err := s.client.Get(ctx, "/staff", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadAvatar pushes an image as multipart form data and returns the URL
// the backend assigned to it.
func (s *crmService) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := s.client.Upload(ctx, "/uploads", filename, r, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
