package demoserver

import (
	"sync"

	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	models.User
	PasswordHash []byte
}

// Store is the demo backend's in-memory state. Demo mode is DB-less: data
// lives for the process lifetime only.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*account // keyed by email
	customers    map[string]models.Customer
	appointments map[string]models.Appointment
	services     []models.SalonService
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]*account),
		customers:    make(map[string]models.Customer),
		appointments: make(map[string]models.Appointment),
	}
}

// Seed loads the demo dataset: one admin account (password "demo1234") and a
// small service catalog.
func (s *Store) Seed() error {
	if err := s.AddUser("Demo Admin", "admin@salon.demo", "demo1234", "admin"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = []models.SalonService{
		{ID: uuid.NewString(), Name: "Haircut", DurationMin: 45, Price: decimal.NewFromInt(35)},
		{ID: uuid.NewString(), Name: "Coloring", DurationMin: 120, Price: decimal.NewFromInt(110)},
		{ID: uuid.NewString(), Name: "Manicure", DurationMin: 60, Price: decimal.RequireFromString("27.50")},
	}
	return nil
}

func (s *Store) AddUser(name, email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &account{
		User:         models.User{ID: uuid.NewString(), Email: email, Name: name, Role: role},
		PasswordHash: hash,
	}
	return nil
}

// Authenticate checks email/password and returns the user on success.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	s.mu.RLock()
	acc, ok := s.users[email]
	s.mu.RUnlock()

	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	u := acc.User
	return &u, nil
}

func (s *Store) UserByID(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.users {
		if acc.ID == id {
			u := acc.User
			return &u, true
		}
	}
	return nil, false
}

func (s *Store) Customers() []models.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out
}

func (s *Store) SaveCustomer(c models.Customer) models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.customers[c.ID] = c
	return c
}

func (s *Store) DeleteCustomer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return false
	}
	delete(s.customers, id)
	return true
}

func (s *Store) Appointments(date string) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0)
	for _, a := range s.appointments {
		if date == "" || a.StartsAt.Format("2006-01-02") == date {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) SaveAppointment(a models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = "booked"
	}
	s.appointments[a.ID] = a
	return a
}

func (s *Store) DeleteAppointment(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return false
	}
	delete(s.appointments, id)
	return true
}

// Staff lists every registered account as a bookable staff member.
func (s *Store) Staff() []models.StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StaffMember, 0, len(s.users))
	for _, acc := range s.users {
		out = append(out, models.StaffMember{
			ID:    acc.ID,
			Name:  acc.Name,
			Role:  acc.Role,
			Email: acc.Email,
		})
	}
	return out
}

func (s *Store) Services() []models.SalonService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SalonService(nil), s.services...)
}
