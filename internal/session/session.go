// Package session models the login lifecycle as explicit state instead of a
// pile of booleans: a session is anonymous, logged in, or logged in with a
// department chosen. Views receive the session by injection and never consult
// ambient global state.
package session

import (
	"errors"
	"strings"
)

// Role separates the administrative surface from the regular chat surface.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// State is the lifecycle position of a session.
type State int

const (
	Anonymous State = iota
	LoggedIn
	DepartmentSelected
)

func (s State) String() string {
	switch s {
	case LoggedIn:
		return "logged-in"
	case DepartmentSelected:
		return "department-selected"
	default:
		return "anonymous"
	}
}

var (
	ErrMissingCredentials = errors.New("please fill in all fields")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrUnknownDepartment  = errors.New("unknown department")
)

// Departments a user can scope their questions to.
var departments = []string{"HR", "Finance", "Operations"}

// Departments returns the selectable departments.
func Departments() []string {
	out := make([]string, len(departments))
	copy(out, departments)
	return out
}

type credential struct {
	email    string
	password string
	role     Role
}

// The service has no account system; access is gated by a fixed table.
var credentials = []credential{
	{"admin@railtel.com", "admin123", RoleAdmin},
	{"user1@railtel.com", "user123", RoleUser},
}

// Session tracks one authenticated user for the lifetime of the process.
// Nothing is persisted; quitting returns to anonymous.
type Session struct {
	state      State
	user       string
	email      string
	role       Role
	department string
}

func New() *Session {
	return &Session{}
}

func (s *Session) State() State       { return s.state }
func (s *Session) User() string       { return s.user }
func (s *Session) Email() string      { return s.email }
func (s *Session) Role() Role         { return s.role }
func (s *Session) Department() string { return s.department }

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.state != Anonymous && s.role == RoleAdmin
}

// Login moves an anonymous session to LoggedIn. The display name is the
// local part of the email.
func (s *Session) Login(email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return ErrMissingCredentials
	}
	for _, c := range credentials {
		if c.email == email && c.password == password {
			s.state = LoggedIn
			s.email = email
			s.user, _, _ = strings.Cut(email, "@")
			s.role = c.role
			s.department = ""
			return nil
		}
	}
	return ErrInvalidCredentials
}

// SelectDepartment moves a LoggedIn session to DepartmentSelected.
func (s *Session) SelectDepartment(dept string) error {
	if s.state == Anonymous {
		return ErrNotLoggedIn
	}
	for _, d := range departments {
		if d == dept {
			s.state = DepartmentSelected
			s.department = dept
			return nil
		}
	}
	return ErrUnknownDepartment
}

// Logout resets the session to anonymous and clears everything it held.
func (s *Session) Logout() {
	*s = Session{}
}
