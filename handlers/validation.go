package handlers

import (
	"regexp"
	"strings"
	"unicode"

	"todoapi/apperrors"
	"todoapi/models"
)

const (
	minNameLen     = 2
	minPasswordLen = 6
	maxPhoneDigits = 11
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+()\-\s.]+$`)
)

type registerRequest struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	PhoneNumber *string      `json:"phone_number"`
	Password    string       `json:"password"`
	Role        *models.Role `json:"role"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validate checks a registration in a fixed order; the first failing rule
// decides the message.
func (req *registerRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == nil {
		return apperrors.Validation("name, email, password and role are required")
	}
	if err := validateName(req.Name); err != nil {
		return err
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone == "" {
			req.PhoneNumber = nil
		} else if err := validatePhone(phone); err != nil {
			return err
		} else {
			req.PhoneNumber = &phone
		}
	}
	if !req.Role.Valid() {
		return apperrors.Validation("role must be 1 (admin) or 2 (standard)")
	}
	return nil
}

func validateName(name string) error {
	if len([]rune(name)) < minNameLen {
		return apperrors.Validation("name must be at least 2 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.Validation("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperrors.Validation("password must be at least 6 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperrors.Validation("invalid phone number")
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits == 0 || digits > maxPhoneDigits {
		return apperrors.Validation("invalid phone number")
	}
	return nil
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// patch validates the supplied fields and converts them to a UserPatch. An
// empty phone number clears it.
func (req updateProfileRequest) patch() (models.UserPatch, error) {
	var p models.UserPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return p, err
		}
		p.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return p, err
		}
		p.Email = &email
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone != "" {
			if err := validatePhone(phone); err != nil {
				return p, err
			}
		}
		p.PhoneNumber = &phone
	}
	if p.Empty() {
		return p, apperrors.Validation("no fields to update")
	}
	return p, nil
}
