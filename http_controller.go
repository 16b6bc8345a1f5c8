package tracker

import (
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Controller serves the JSON API on top of the services
type Controller struct {
	Logger   Logger
	Metrics  *Metrics
	Auth     *AuthService
	Projects *ProjectService
	Tasks    *TaskService
	Users    *UserService
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller) *Controller

// WithControllerLogger sets the logger
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerMetrics observes request durations in m
func WithControllerMetrics(m *Metrics) ControllerOption {
	return func(c *Controller) *Controller {
		c.Metrics = m
		return c
	}
}

// NewController wires the services into a Controller
func NewController(auth *AuthService, projects *ProjectService, tasks *TaskService, users *UserService, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:   defLogger{},
		Auth:     auth,
		Projects: projects,
		Tasks:    tasks,
		Users:    users,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auth == nil || c.Projects == nil || c.Tasks == nil || c.Users == nil {
		panic("Missing service in tracker controller...")
	}

	return c
}

type route struct {
	method  string
	path    string
	handler router.HandlerFunc
	public  bool
}

func (c *Controller) routes() []route {
	return []route{
		{http.MethodGet, "/api/test/health", c.Health, true},

		{http.MethodPost, "/api/auth/register", c.Register, true},
		{http.MethodPost, "/api/auth/login", c.Login, true},

		{http.MethodPost, "/api/projects", c.CreateProject, false},
		{http.MethodGet, "/api/projects", c.ListProjects, false},
		{http.MethodGet, "/api/projects/my-projects", c.MyProjects, false},
		{http.MethodGet, "/api/projects/:id", c.GetProject, false},
		{http.MethodPut, "/api/projects/:id", c.UpdateProject, false},
		{http.MethodDelete, "/api/projects/:id", c.DeleteProject, false},

		{http.MethodPost, "/api/tasks", c.CreateTask, false},
		{http.MethodGet, "/api/tasks/project/:projectId", c.TasksByProject, false},
		{http.MethodGet, "/api/tasks/assigned/:userId", c.TasksByAssignee, false},
		{http.MethodGet, "/api/tasks/status/:status", c.TasksByStatus, false},
		{http.MethodGet, "/api/tasks/priority/:priority", c.TasksByPriority, false},
		{http.MethodGet, "/api/tasks/due-before/:date", c.TasksDueBefore, false},
		{http.MethodGet, "/api/tasks/:id", c.GetTask, false},
		{http.MethodPut, "/api/tasks/:id", c.UpdateTask, false},
		{http.MethodPatch, "/api/tasks/:id/status", c.UpdateTaskStatus, false},
		{http.MethodDelete, "/api/tasks/:id", c.DeleteTask, false},

		{http.MethodGet, "/api/users", c.ListUsers, false},
		{http.MethodGet, "/api/users/role/:role", c.UsersByRole, false},
		{http.MethodGet, "/api/users/:id", c.GetUser, false},
		{http.MethodDelete, "/api/users/:id", c.DeleteUser, false},
	}
}

// RegisterRoutes mounts every API route on app. Routes outside the auth and
// health groups also get RequireCaller as their innermost middleware.
func RegisterRoutes(app RouteRegistrar, controller *Controller, mw ...router.MiddlewareFunc) {
	for _, r := range controller.routes() {
		chain := append([]router.MiddlewareFunc{InstrumentRoute(controller.Metrics, r.method, r.path)}, mw...)
		if !r.public {
			chain = append(chain, RequireCaller(controller.Logger))
		}
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler, chain...)
		case http.MethodPost:
			app.Post(r.path, r.handler, chain...)
		case http.MethodPut:
			app.Put(r.path, r.handler, chain...)
		case http.MethodPatch:
			app.Patch(r.path, r.handler, chain...)
		case http.MethodDelete:
			app.Delete(r.path, r.handler, chain...)
		}
	}
}

func (c *Controller) Health(ctx router.Context) error {
	return writeJSON(ctx, http.StatusOK, map[string]string{
		"status":  "UP",
		"message": "Task Tracker API is running!",
	})
}

func (c *Controller) Register(ctx router.Context) error {
	payload := new(RegisterRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	res, err := c.Auth.Register(ctx.Context(), *payload)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, res)
}

func (c *Controller) Login(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	res, err := c.Auth.Login(ctx.Context(), *payload)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, res)
}

func (c *Controller) CreateProject(ctx router.Context) error {
	payload := new(ProjectRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	if verr := payload.Validate(); verr != nil {
		return c.fail(ctx, verr)
	}

	project, err := c.Projects.CreateProject(ctx.Context(), callerOf(ctx), payload.ToInput())
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewProjectView(project))
}

func (c *Controller) ListProjects(ctx router.Context) error {
	projects, err := c.Projects.GetAllProjects(ctx.Context(), callerOf(ctx))
	if err != nil {
		return c.fail(ctx, err)
	}

	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, NewProjectView(p))
	}

	return writeJSON(ctx, http.StatusOK, views)
}

func (c *Controller) MyProjects(ctx router.Context) error {
	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	projects, err := c.Projects.GetMyProjects(ctx.Context(), callerOf(ctx), page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(projects, NewProjectView))
}

func (c *Controller) GetProject(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	project, err := c.Projects.GetProjectByID(ctx.Context(), callerOf(ctx), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewProjectView(project))
}

func (c *Controller) UpdateProject(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(ProjectRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	if verr := payload.Validate(); verr != nil {
		return c.fail(ctx, verr)
	}

	project, err := c.Projects.UpdateProject(ctx.Context(), callerOf(ctx), id, payload.ToInput())
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewProjectView(project))
}

func (c *Controller) DeleteProject(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Projects.DeleteProject(ctx.Context(), callerOf(ctx), id); err != nil {
		return c.fail(ctx, err)
	}

	return noContent(ctx)
}

func (c *Controller) CreateTask(ctx router.Context) error {
	payload := new(TaskCreateRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	if verr := payload.Validate(); verr != nil {
		return c.fail(ctx, verr)
	}

	in, err := payload.ToInput()
	if err != nil {
		return c.fail(ctx, err)
	}

	task, err := c.Tasks.CreateTask(ctx.Context(), callerOf(ctx), in)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewTaskView(task))
}

func (c *Controller) GetTask(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	task, err := c.Tasks.GetTaskByID(ctx.Context(), callerOf(ctx), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewTaskView(task))
}

func (c *Controller) TasksByProject(ctx router.Context) error {
	projectID, err := ParseID("projectId", ctx.Param("projectId"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	tasks, err := c.Tasks.GetTasksByProject(ctx.Context(), callerOf(ctx), projectID, page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(tasks, NewTaskView))
}

func (c *Controller) TasksByAssignee(ctx router.Context) error {
	userID, err := ParseID("userId", ctx.Param("userId"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	tasks, err := c.Tasks.GetTasksByAssignedUser(ctx.Context(), callerOf(ctx), userID, page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(tasks, NewTaskView))
}

func (c *Controller) TasksByStatus(ctx router.Context) error {
	status, err := ParseTaskStatus(ctx.Param("status"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	tasks, err := c.Tasks.GetTasksByStatus(ctx.Context(), callerOf(ctx), status, page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(tasks, NewTaskView))
}

func (c *Controller) TasksByPriority(ctx router.Context) error {
	priority, err := ParseTaskPriority(ctx.Param("priority"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	tasks, err := c.Tasks.GetTasksByPriority(ctx.Context(), callerOf(ctx), priority, page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(tasks, NewTaskView))
}

func (c *Controller) TasksDueBefore(ctx router.Context) error {
	date, err := ParseDate("date", ctx.Param("date"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, err := pageRequestOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	tasks, err := c.Tasks.GetTasksDueBefore(ctx.Context(), callerOf(ctx), date, page)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, MapPage(tasks, NewTaskView))
}

func (c *Controller) UpdateTask(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(TaskUpdateRequest)
	if err := bindPayload(ctx, payload); err != nil {
		return c.fail(ctx, err)
	}

	if verr := payload.Validate(); verr != nil {
		return c.fail(ctx, verr)
	}

	in, err := payload.ToInput()
	if err != nil {
		return c.fail(ctx, err)
	}

	task, err := c.Tasks.UpdateTask(ctx.Context(), callerOf(ctx), id, in)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewTaskView(task))
}

func (c *Controller) UpdateTaskStatus(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	status, err := ParseTaskStatus(ctx.Query("status", ""))
	if err != nil {
		return c.fail(ctx, err)
	}

	task, err := c.Tasks.UpdateTaskStatus(ctx.Context(), callerOf(ctx), id, status)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewTaskView(task))
}

func (c *Controller) DeleteTask(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Tasks.DeleteTask(ctx.Context(), callerOf(ctx), id); err != nil {
		return c.fail(ctx, err)
	}

	return noContent(ctx)
}

func (c *Controller) ListUsers(ctx router.Context) error {
	users, err := c.Users.GetAllUsers(ctx.Context(), callerOf(ctx))
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, userViews(users))
}

func (c *Controller) GetUser(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	user, err := c.Users.GetUserByID(ctx.Context(), callerOf(ctx), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, NewUserView(user))
}

func (c *Controller) UsersByRole(ctx router.Context) error {
	role, err := ParseRole(ctx.Param("role"))
	if err != nil {
		return c.fail(ctx, err)
	}

	users, err := c.Users.GetUsersByRole(ctx.Context(), callerOf(ctx), role)
	if err != nil {
		return c.fail(ctx, err)
	}

	return writeJSON(ctx, http.StatusOK, userViews(users))
}

func (c *Controller) DeleteUser(ctx router.Context) error {
	id, err := ParseID("id", ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Users.DeleteUser(ctx.Context(), callerOf(ctx), id); err != nil {
		return c.fail(ctx, err)
	}

	return noContent(ctx)
}

func (c *Controller) fail(ctx router.Context, err error) error {
	return WriteError(ctx, c.Logger, err)
}

// callerOf returns the bound caller, the zero Caller when anonymous.
// Services reject the zero Caller with ErrUnauthenticated.
func callerOf(ctx router.Context) Caller {
	caller, _ := CallerFromContext(ctx.Context())
	return caller
}

func bindPayload(ctx router.Context, payload any) error {
	if err := ctx.Bind(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "Malformed request body").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("VALIDATION_FAILED")
	}
	return nil
}

func pageRequestOf(ctx router.Context) (PageRequest, error) {
	page, err := queryInt(ctx, "page", 0)
	if err != nil {
		return PageRequest{}, err
	}

	size, err := queryInt(ctx, "size", DefaultPageSize)
	if err != nil {
		return PageRequest{}, err
	}

	return NewPageRequest(page, size), nil
}

func queryInt(ctx router.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(ctx.Query(name, ""))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidField(name, err)
	}
	return v, nil
}

func noContent(ctx router.Context) error {
	ctx.Locals(statusLocalsKey, http.StatusNoContent)
	return ctx.Status(http.StatusNoContent).SendString("")
}

func userViews(users []*User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}
