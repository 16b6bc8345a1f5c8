package tracker

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.EmailFormat),
			// bcrypt ignores input past 72 bytes
			validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
			validation.Field(&r.Role, validation.Required, validation.By(validateRole)),
		)
	}, "Invalid registration payload")
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.EmailFormat),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

// ProjectRequest is the create and update payload for projects
type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate will run validation rules
func (r ProjectRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Required, validation.By(notBlank), validation.Length(1, 255)),
			validation.Field(&r.Description, validation.Length(0, 2000)),
		)
	}, "Invalid project payload")
}

// ProjectInput is a validated project payload
type ProjectInput struct {
	Name        string
	Description string
}

// ToInput converts the payload
func (r ProjectRequest) ToInput() ProjectInput {
	return ProjectInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
	}
}

// TaskCreateRequest payload
type TaskCreateRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	ProjectID      string  `json:"project_id"`
	DueDate        *string `json:"due_date"`
	Priority       *string `json:"priority"`
	AssignedUserID *string `json:"assigned_user_id"`
}

// Validate will run validation rules
func (r TaskCreateRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.By(notBlank), validation.Length(1, 255)),
			validation.Field(&r.Description, validation.Length(0, 2000)),
			validation.Field(&r.ProjectID, validation.Required, is.UUID),
			validation.Field(&r.DueDate, validation.Date(DateLayout)),
			validation.Field(&r.Priority, validation.By(validatePriority)),
			validation.Field(&r.AssignedUserID, is.UUID),
		)
	}, "Invalid task payload")
}

// TaskCreateInput is a validated task creation payload
type TaskCreateInput struct {
	Title          string
	Description    string
	ProjectID      uuid.UUID
	DueDate        *time.Time
	Priority       *TaskPriority
	AssignedUserID *uuid.UUID
}

// ToInput converts a validated payload
func (r TaskCreateRequest) ToInput() (TaskCreateInput, error) {
	projectID, err := uuid.Parse(r.ProjectID)
	if err != nil {
		return TaskCreateInput{}, invalidField("project_id", err)
	}

	in := TaskCreateInput{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		ProjectID:   projectID,
	}

	if in.DueDate, err = parseOptionalDate("due_date", r.DueDate); err != nil {
		return TaskCreateInput{}, err
	}

	if in.Priority, err = parseOptionalPriority(r.Priority); err != nil {
		return TaskCreateInput{}, err
	}

	if in.AssignedUserID, err = parseOptionalUUID("assigned_user_id", r.AssignedUserID); err != nil {
		return TaskCreateInput{}, err
	}

	return in, nil
}

// TaskUpdateRequest payload. Absent fields leave the task unchanged.
type TaskUpdateRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	DueDate        *string `json:"due_date"`
	Priority       *string `json:"priority"`
	AssignedUserID *string `json:"assigned_user_id"`
}

// Validate will run validation rules
func (r TaskUpdateRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.NilOrNotEmpty, validation.By(notBlank), validation.Length(1, 255)),
			validation.Field(&r.Description, validation.Length(0, 2000)),
			validation.Field(&r.Status, validation.By(validateStatus)),
			validation.Field(&r.DueDate, validation.Date(DateLayout)),
			validation.Field(&r.Priority, validation.By(validatePriority)),
			validation.Field(&r.AssignedUserID, is.UUID),
		)
	}, "Invalid task payload")
}

// TaskUpdateInput is a validated partial task update
type TaskUpdateInput struct {
	Title          *string
	Description    *string
	Status         *TaskStatus
	DueDate        *time.Time
	Priority       *TaskPriority
	AssignedUserID *uuid.UUID
}

// ToInput converts a validated payload
func (r TaskUpdateRequest) ToInput() (TaskUpdateInput, error) {
	var err error
	in := TaskUpdateInput{
		Title:       trimmedPtr(r.Title),
		Description: r.Description,
	}

	if r.Status != nil {
		status, err := ParseTaskStatus(*r.Status)
		if err != nil {
			return TaskUpdateInput{}, err
		}
		in.Status = &status
	}

	if in.DueDate, err = parseOptionalDate("due_date", r.DueDate); err != nil {
		return TaskUpdateInput{}, err
	}

	if in.Priority, err = parseOptionalPriority(r.Priority); err != nil {
		return TaskUpdateInput{}, err
	}

	if in.AssignedUserID, err = parseOptionalUUID("assigned_user_id", r.AssignedUserID); err != nil {
		return TaskUpdateInput{}, err
	}

	return in, nil
}

// IsEmpty reports whether the update changes nothing
func (in TaskUpdateInput) IsEmpty() bool {
	return in.Title == nil &&
		in.Description == nil &&
		in.Status == nil &&
		in.DueDate == nil &&
		in.Priority == nil &&
		in.AssignedUserID == nil
}

func validateRole(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := ParseRole(s); err != nil {
		return errors.New("must be one of ADMIN, MANAGER, USER")
	}
	return nil
}

func validateStatus(value any) error {
	s, ok := derefString(value)
	if !ok {
		return nil
	}
	if _, err := ParseTaskStatus(s); err != nil {
		return errors.New("must be one of TODO, IN_PROGRESS, DONE")
	}
	return nil
}

func validatePriority(value any) error {
	s, ok := derefString(value)
	if !ok {
		return nil
	}
	if _, err := ParseTaskPriority(s); err != nil {
		return errors.New("must be one of LOW, MEDIUM, HIGH")
	}
	return nil
}

func notBlank(value any) error {
	s, ok := derefString(value)
	if ok && s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func derefString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	default:
		return "", false
	}
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalidField(field, err)
	}
	return &t, nil
}

func parseOptionalPriority(raw *string) (*TaskPriority, error) {
	if raw == nil {
		return nil, nil
	}
	p, err := ParseTaskPriority(*raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func parseOptionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalidField(field, err)
	}
	return &id, nil
}

// ParseID parses a path id
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalidField(field, err)
	}
	return id, nil
}

// ParseDate parses a due date path value
func ParseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalidField(field, err)
	}
	return t, nil
}

func invalidField(field string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid value for "+field).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("VALIDATION_FAILED").
		WithMetadata(map[string]any{"field": field})
}
