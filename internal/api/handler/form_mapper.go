package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// --- Request → Service input ---

// parseGroupChoice reads the group select. An empty value means no group.
func parseGroupChoice(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// formImage returns the uploaded image, if any, and a func that releases it.
// Requests without a multipart body or without the field carry no image.
func formImage(c echo.Context) (*ports.ImageUpload, func()) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, func() {}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}
	}
	return &ports.ImageUpload{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }
}

func toRegisterInput(req signupRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password1,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
}

func toCreateGroupInput(req createGroupRequest) ports.CreateGroupInput {
	return ports.CreateGroupInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
}

// --- Service error → Form errors ---

// formError places err next to the form field it concerns. It reports false
// for errors that should reach the HTTP error handler instead.
func formError(err error) (field, message string, ok bool) {
	var ve *domain.ValidationError
	var fe FieldErrors
	switch {
	case errors.As(err, &ve):
		return ve.Field, ve.Message, true
	case errors.As(err, &fe):
		for k, v := range fe {
			if field == "" || k < field {
				field, message = k, v
			}
		}
		return field, message, field != ""
	case errors.Is(err, domain.ErrInvalidReference):
		return "group", "Select a valid choice. That choice is not one of the available choices.", true
	case errors.Is(err, domain.ErrUserExists):
		return "username", "A user with that username already exists.", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return nonFieldError, "Please enter a correct username and password.", true
	}
	return "", "", false
}

// formErrors converts a validation result into per-field form errors.
func formErrors(err error) (Errors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		out := make(Errors, len(fe))
		for k, v := range fe {
			out[k] = v
		}
		return out, true
	}
	if field, msg, ok := formError(err); ok {
		return Errors{field: msg}, true
	}
	return nil, false
}
