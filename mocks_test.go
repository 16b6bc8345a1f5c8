package tracker_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tracker "github.com/goliatone/go-tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key-0123456789abcdef"

// MockLogger implements tracker.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

type logCall struct {
	level   string
	message string
	args    []any
}

// recordingLogger keeps every call for later assertions
type recordingLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c.level == level {
			n++
		}
	}
	return n
}

// stubIdentities is an in memory tracker.IdentityStore
type stubIdentities struct {
	byEmail map[string]*tracker.User
	err     error
}

func newStubIdentities(users ...*tracker.User) *stubIdentities {
	s := &stubIdentities{byEmail: map[string]*tracker.User{}}
	for _, u := range users {
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *stubIdentities) FindByEmail(_ context.Context, email string) (*tracker.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, tracker.NotFoundError("user", email)
	}
	return u, nil
}

func (s *stubIdentities) FindByID(_ context.Context, id uuid.UUID) (*tracker.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, tracker.NotFoundError("user", id)
}

func (s *stubIdentities) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, s.err
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())

	opts := tracker.DatabaseOptions{
		DSN:          dsn,
		MaxOpenConns: 1,
		PingTimeout:  time.Second,
	}

	db, err := tracker.OpenDB(context.Background(), opts, &recordingLogger{})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, tracker.Migrate(context.Background(), db, opts, &recordingLogger{}))

	return db
}

// testApp wires real services over an in memory database
type testApp struct {
	db       *bun.DB
	repo     tracker.RepositoryManager
	tokens   *tracker.TokenServiceImpl
	auth     *tracker.AuthService
	projects *tracker.ProjectService
	tasks    *tracker.TaskService
	users    *tracker.UserService
	logger   *recordingLogger
	events   *eventRecorder
}

type eventRecorder struct {
	mu     sync.Mutex
	events []tracker.ActivityEvent
}

func (r *eventRecorder) Record(_ context.Context, event tracker.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []tracker.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tracker.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := newTestDB(t)
	repo := tracker.NewRepositoryManager(db)
	logger := &recordingLogger{}
	events := &eventRecorder{}

	tokens := tracker.NewTokenService([]byte(testSigningKey), 1, "go-tracker", nil, logger)

	opts := []tracker.ServiceOption{
		tracker.WithServiceLogger(logger),
		tracker.WithActivitySink(events),
	}

	return &testApp{
		db:       db,
		repo:     repo,
		tokens:   tokens,
		auth:     tracker.NewAuthService(repo, tracker.NewBcryptHasher(bcrypt.MinCost), tokens, opts...),
		projects: tracker.NewProjectService(repo.Projects(), opts...),
		tasks:    tracker.NewTaskService(repo.Tasks(), repo.Projects(), repo.Users(), opts...),
		users:    tracker.NewUserService(repo.Users(), opts...),
		logger:   logger,
		events:   events,
	}
}

// register creates a user through the auth service and returns its caller
func (a *testApp) register(t *testing.T, email string, role tracker.Role) tracker.Caller {
	t.Helper()

	res, err := a.auth.Register(context.Background(), tracker.RegisterRequest{
		Email:    email,
		Password: "secret-password",
		Role:     string(role),
	})
	require.NoError(t, err)

	return tracker.Caller{
		UserID:    res.User.ID,
		Email:     res.User.Email,
		Role:      res.User.Role,
		Authority: res.User.Role.String(),
	}
}

func (a *testApp) createProject(t *testing.T, owner tracker.Caller, name string) *tracker.Project {
	t.Helper()

	project, err := a.projects.CreateProject(context.Background(), owner, tracker.ProjectInput{Name: name})
	require.NoError(t, err)
	return project
}

func (a *testApp) createTask(t *testing.T, caller tracker.Caller, projectID uuid.UUID, title string, assignee *uuid.UUID) *tracker.Task {
	t.Helper()

	task, err := a.tasks.CreateTask(context.Background(), caller, tracker.TaskCreateInput{
		Title:          title,
		ProjectID:      projectID,
		AssignedUserID: assignee,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
