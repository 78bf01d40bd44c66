package handlers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

const defaultPerPage = 10

// apiError is the WooCommerce error envelope.
type apiError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    errorData `json:"data"`
}

type errorData struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors,omitempty"`
}

// requestError is a malformed or invalid request body.
type requestError struct {
	message string
	fields  map[string]string
}

func (e *requestError) Error() string { return e.message }

func statusOf(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindUnavailable, services.KindInsufficientStock, services.KindAlreadyExists,
		services.KindInvalid, services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as a WooCommerce
// error envelope. Errors that are not part of the API contract are logged
// and reported as server_error.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := apiError{Code: "server_error", Message: "Internal server error"}

		var (
			reqErr   *requestError
			fiberErr *fiber.Error
		)
		switch {
		case errors.As(err, &reqErr):
			body.Code = "validation_error"
			body.Message = reqErr.message
			body.Data = errorData{Status: fiber.StatusBadRequest, Errors: reqErr.fields}
		case errors.As(err, &fiberErr):
			body.Code = "rest_error"
			if fiberErr.Code == fiber.StatusNotFound {
				body.Code = "rest_no_route"
			}
			body.Message = fiberErr.Message
			body.Data.Status = fiberErr.Code
		default:
			if e, ok := services.AsError(err); ok && e.Kind != services.KindInternal {
				body.Code = e.Code
				body.Message = e.Message
				body.Data.Status = statusOf(e.Kind)
				break
			}
			body.Data.Status = fiber.StatusInternalServerError
			log.Error("Request failed",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("request_id")),
			)
		}
		return c.Status(body.Data.Status).JSON(body)
	}
}

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &requestError{message: "Invalid request body"}
	}
	return check(validate, dst)
}

func check(validate *validator.Validate, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate request")
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &requestError{message: fields[fieldErrs[0].Field()], fields: fields}
}

// Pager reads WooCommerce pagination parameters.
type Pager struct {
	MaxPerPage int
}

func (p Pager) Page(c *fiber.Ctx) repositories.Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if p.MaxPerPage > 0 && perPage > p.MaxPerPage {
		perPage = p.MaxPerPage
	}
	return repositories.Page{Page: page, PerPage: perPage}
}

// paged sets the X-WP-Total and X-WP-TotalPages headers and writes items.
func paged(c *fiber.Ctx, items any, total int64, page repositories.Page) error {
	pages := 0
	if page.PerPage > 0 {
		pages = int(math.Ceil(float64(total) / float64(page.PerPage)))
	}
	c.Set("X-WP-Total", strconv.FormatInt(total, 10))
	c.Set("X-WP-TotalPages", strconv.Itoa(pages))
	return c.JSON(items)
}

// actor returns the authenticated caller stored by the auth middleware.
func actor(c *fiber.Ctx) services.Actor {
	id, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	return services.Actor{UserID: id, Admin: role == models.RoleAdmin}
}

// queryBool returns nil when the parameter is absent.
func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
