package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation or a rejected deletion.
	ErrConflict = errors.New("conflict")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates an invalid or missing session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller may not perform the mutation.
	ErrForbidden = errors.New("forbidden")

	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrRoleNotFound     = fmt.Errorf("role %w", ErrNotFound)
	ErrArtistNotFound   = fmt.Errorf("artist %w", ErrNotFound)
	ErrAlbumNotFound    = fmt.Errorf("album %w", ErrNotFound)
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)
	ErrFavoriteNotFound = fmt.Errorf("favorite %w", ErrNotFound)
	ErrFollowNotFound   = fmt.Errorf("follow %w", ErrNotFound)

	// ErrUsernameTaken signals the username is already registered.
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", ErrConflict)
	// ErrEmailTaken signals the email is already registered.
	ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)
	// ErrRoleExists signals a duplicate role name.
	ErrRoleExists = fmt.Errorf("role already exists: %w", ErrConflict)
	// ErrArtistInUse is returned when albums or songs still reference the artist.
	ErrArtistInUse = fmt.Errorf("artist is referenced by albums or songs: %w", ErrConflict)
	// ErrAlbumInUse is returned when songs still reference the album.
	ErrAlbumInUse = fmt.Errorf("album is referenced by songs: %w", ErrConflict)
)

// ValidationError reports user-correctable problems keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
