// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/middleware"
	"github.com/amirphl/leadboard/app/services"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/amirphl/leadboard/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
)

const defaultRequestTimeout = 30 * time.Second

// statusByCode maps BusinessError codes to HTTP statuses
var statusByCode = map[string]int{
	businessflow.CodeValidation:          fiber.StatusBadRequest,
	businessflow.CodeInvalidCategory:     fiber.StatusBadRequest,
	businessflow.CodeInvalidTwitterURL:   fiber.StatusBadRequest,
	businessflow.CodeNoValidFields:       fiber.StatusBadRequest,
	businessflow.CodeInvalidFileType:     fiber.StatusBadRequest,
	businessflow.CodeFileTooLarge:        fiber.StatusBadRequest,
	businessflow.CodeInvalidPath:         fiber.StatusBadRequest,
	businessflow.CodeInvalidLookup:       fiber.StatusBadRequest,
	businessflow.CodeInvalidMFACode:      fiber.StatusBadRequest,
	businessflow.CodeInvalidRecoveryCode: fiber.StatusBadRequest,
	businessflow.CodeChallengeExpired:    fiber.StatusBadRequest,
	businessflow.CodeCategoryNotFound:    fiber.StatusNotFound,
	businessflow.CodeLeadNotFound:        fiber.StatusNotFound,
	businessflow.CodeVideoNotFound:       fiber.StatusNotFound,
	businessflow.CodeBucketNotFound:      fiber.StatusNotFound,
	businessflow.CodeObjectNotFound:      fiber.StatusNotFound,
	businessflow.CodeSalesRecordNotFound: fiber.StatusNotFound,
	businessflow.CodeFactorNotFound:      fiber.StatusNotFound,
	businessflow.CodeChallengeNotFound:   fiber.StatusNotFound,
	businessflow.CodeInvalidRefreshToken: fiber.StatusUnauthorized,
	businessflow.CodeForbidden:           fiber.StatusForbidden,
	businessflow.CodeMFARequired:         fiber.StatusForbidden,
	businessflow.CodeNoCategories:        fiber.StatusInternalServerError,
	businessflow.CodeStorageError:        fiber.StatusInternalServerError,
}

// baseHandler carries what every handler needs: request validation and the error envelope
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.ErrorResponse{
		Error:   message,
		Code:    errorCode,
		Details: details,
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(data)
}

// bindJSON parses and validates the body into req, writing the 400 itself on failure
func (h *baseHandler) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				details = append(details, getValidationErrorMessage(fe))
			}
			return false, h.ErrorResponse(c, fiber.StatusBadRequest, details[0], businessflow.CodeValidation, details)
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidation, err.Error())
	}
	return true, nil
}

// actor returns the authenticated caller, writing 401 when the auth middleware did not run
func (h *baseHandler) actor(c fiber.Ctx) (businessflow.Actor, bool, error) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return businessflow.Actor{}, false, h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	return actor, true, nil
}

// flowError translates a flow error into the error envelope. Unknown errors are reported and hidden.
func (h *baseHandler) flowError(c fiber.Ctx, err error, fallback string) error {
	if be, ok := businessflow.AsBusinessError(err); ok {
		if status, known := statusByCode[be.Code]; known {
			if status >= fiber.StatusInternalServerError {
				h.report(c, err)
			}
			return h.ErrorResponse(c, status, be.Message, be.Code, nil)
		}
	}

	h.report(c, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallback, "INTERNAL_ERROR", nil)
}

func (h *baseHandler) report(c fiber.Ctx, err error) {
	rid := requestid.FromContext(c)
	logrus.WithFields(logrus.Fields{
		"request_id": rid,
		"method":     c.Method(),
		"path":       c.Path(),
	}).WithError(err).Error("request failed")
	services.ReportError(err, map[string]string{"path": c.Path(), "request_id": rid})
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	md := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	md.SetRequestID(requestid.FromContext(c))
	return md
}

func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return h.createRequestContextWithTimeout(c, endpoint, defaultRequestTimeout)
}

func (h *baseHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestid.FromContext(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	if actor, ok := middleware.GetActorFromContext(c); ok {
		ctx = context.WithValue(ctx, utils.UserIDKey, actor.UserID.String())
	}
	return ctx, cancel
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		if err.Kind() == reflect.Slice {
			return err.Field() + " must contain at least " + err.Param() + " items"
		}
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		if err.Kind() == reflect.Slice {
			return err.Field() + " must contain at most " + err.Param() + " items"
		}
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
