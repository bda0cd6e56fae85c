// Package controller holds what the route groups share: error responses, request
// validation and caller identity checks.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/service"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RegisterValidators adds the `category` binding tag.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})
}

// RespondError writes err with the status of its apperr kind.
func RespondError(ctx *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx.Request.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.KindOf(err).String())
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Request failed")
	} else {
		log.Warn().Err(err).Str("path", ctx.FullPath()).Int("status", status).Msg("Request rejected")
	}
	ctx.JSON(status, dto.ErrorResponse{Message: apperr.Message(err)})
}

// RespondBindError answers 400 for a request that failed binding or validation.
func RespondBindError(ctx *gin.Context, err error) {
	log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Failed to bind request")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
}

// CallerUserID is the local user id of the bearer token, or "" for anonymous calls.
func CallerUserID(ctx *gin.Context, users service.UserService) (string, error) {
	claims, ok := auth.ClaimsFrom(ctx)
	if !ok {
		return "", nil
	}
	return users.ResolveUserID(ctx.Request.Context(), claims.Subject)
}

// AuthorizeUser lets a request touch userID's data when it is anonymous, made by an
// admin, or made by that same user. It writes the error response itself.
func AuthorizeUser(ctx *gin.Context, users service.UserService, userID string) bool {
	claims, ok := auth.ClaimsFrom(ctx)
	if !ok || claims.IsAdmin() {
		return true
	}
	callerID, err := users.ResolveUserID(ctx.Request.Context(), claims.Subject)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			RespondError(ctx, apperr.Forbidden("다른 사용자의 정보에 접근할 수 없습니다."))
			return false
		}
		RespondError(ctx, err)
		return false
	}
	if callerID != userID {
		RespondError(ctx, apperr.Forbidden("다른 사용자의 정보에 접근할 수 없습니다."))
		return false
	}
	return true
}
