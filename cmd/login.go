package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/railtel/railgpt/internal/config"
	"github.com/railtel/railgpt/internal/session"
)

const maxLoginAttempts = 3

// login walks the session from anonymous to department-selected: an
// email/password form, then a department picker. The config may prefill
// both; the password is always prompted.
func login(cfg *config.Config) (*session.Session, error) {
	sess := session.New()

	email := cfg.Login.Email
	for attempt := 1; ; attempt++ {
		var password string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email).
				Validate(requireValue("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(requireValue("password")),
		))
		if err := form.Run(); err != nil {
			return nil, err
		}

		if err := sess.Login(email, password); err == nil {
			break
		} else if attempt >= maxLoginAttempts {
			return nil, err
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	dept := cfg.Login.Department
	if !validDepartment(dept) {
		picker := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Department").
				Options(huh.NewOptions(session.Departments()...)...).
				Value(&dept),
		))
		if err := picker.Run(); err != nil {
			return nil, err
		}
	}
	if err := sess.SelectDepartment(dept); err != nil {
		return nil, err
	}
	return sess, nil
}

func requireValue(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("please fill in the %s field", field)
		}
		return nil
	}
}

func validDepartment(dept string) bool {
	for _, d := range session.Departments() {
		if d == dept {
			return true
		}
	}
	return false
}
