package tracker

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-tracker/middleware/jwtware"
)

const statusLocalsKey = "tracker.status"

// RouteAuthenticator binds the caller of each request to its context
type RouteAuthenticator struct {
	auth       *Authenticator
	extractors []jwtware.JWTExtractor
	Logger     Logger
}

// NewHTTPAuthenticator reads the token lookup and scheme from cfg
func NewHTTPAuthenticator(auther *Authenticator, cfg Config) *RouteAuthenticator {
	return &RouteAuthenticator{
		auth:       auther,
		extractors: jwtware.GetExtractors(cfg.GetTokenLookup(), cfg.GetAuthScheme()),
		Logger:     defLogger{},
	}
}

// WithLogger sets the logger
func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Middleware runs the authentication pipeline and always calls the next
// handler. Requests without a usable token continue anonymously.
func (a *RouteAuthenticator) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			raw, _ := jwtware.ExtractRawTokenFromContext(c, a.extractors)

			ctx, outcome := a.auth.Authenticate(c.Context(), c.Path(), raw)
			switch outcome {
			case OutcomeBound:
				c.SetContext(ctx)
			case OutcomeInvalidToken, OutcomeUnknownIdentity, OutcomeInvalidRole:
				a.Logger.Debug("request continues without caller",
					"path", c.Path(),
					"outcome", outcome,
				)
			}

			return next(c)
		}
	}
}

// RequireCaller rejects requests that reached it without a bound caller
func RequireCaller(logger Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if _, ok := CallerFromContext(c.Context()); !ok {
				return WriteError(c, logger, ErrUnauthenticated)
			}
			return next(c)
		}
	}
}

// InstrumentRoute observes the duration of requests served by route
func InstrumentRoute(m *Metrics, method, route string) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			start := time.Now()
			err := next(c)

			status := http.StatusOK
			if v, ok := c.Locals(statusLocalsKey).(int); ok {
				status = v
			} else if err != nil {
				status, _ = NewErrorResponse(err, start)
			}

			m.ObserveRequest(method, route, status, time.Since(start))
			return err
		}
	}
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	TextCode  string            `json:"text_code"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// NewErrorResponse maps err to a status code and response body
func NewErrorResponse(err error, now time.Time) (int, ErrorResponse) {
	res := ErrorResponse{Timestamp: now.UTC()}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return unexpectedError(err, res)
	}

	switch richErr.Category {
	case goerrors.CategoryNotFound:
		res.Status = http.StatusNotFound
	case goerrors.CategoryAuthz:
		res.Status = http.StatusForbidden
	case goerrors.CategoryConflict:
		res.Status = http.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		res.Status = http.StatusBadRequest
		if fields := richErr.ValidationMap(); len(fields) > 0 {
			res.Errors = fields
		}
		if richErr.TextCode == "" {
			res.TextCode = "VALIDATION_FAILED"
		}
	case goerrors.CategoryAuth:
		res.Status = http.StatusUnauthorized
	default:
		return unexpectedError(err, res)
	}

	res.Message = richErr.Message
	if richErr.TextCode != "" {
		res.TextCode = richErr.TextCode
	}
	if res.TextCode == "" {
		res.TextCode = http.StatusText(res.Status)
	}

	return res.Status, res
}

func unexpectedError(err error, res ErrorResponse) (int, ErrorResponse) {
	root := rootCause(err)
	res.Status = http.StatusInternalServerError
	res.TextCode = "INTERNAL"
	if root == nil {
		res.Message = "An unexpected error occurred"
		return res.Status, res
	}
	res.Message = fmt.Sprintf("An unexpected error occurred: %T: %s", root, root.Error())
	return res.Status, res
}

func rootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// WriteError sends the JSON error response for err
func WriteError(c router.Context, logger Logger, err error) error {
	status, res := NewErrorResponse(err, time.Now())

	if logger == nil {
		logger = defLogger{}
	}

	if status >= http.StatusInternalServerError {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			logger.Error("request failed",
				"path", c.Path(),
				"error", err,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)
		} else {
			logger.Error("request failed", "path", c.Path(), "error", err)
		}
	} else {
		logger.Debug("request rejected",
			"path", c.Path(),
			"status", status,
			"text_code", res.TextCode,
		)
	}

	return writeJSON(c, status, res)
}

func writeJSON(c router.Context, status int, body any) error {
	c.Locals(statusLocalsKey, status)
	return c.JSON(status, body)
}
