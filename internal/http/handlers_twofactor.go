package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
)

// DuoServiceInterface defines the Duo operations the handlers need.
type DuoServiceInterface interface {
	UserAvailable(ctx context.Context, userID string) (bool, error)
	UserAuthorize(ctx context.Context, userID string) (twofactor.GenerateResult, error)
	UserValidate(ctx context.Context, userID, payload string) (twofactor.ValidateResult, error)
	OrganizationAvailable(ctx context.Context, orgID, userID string) (bool, error)
	OrganizationAuthorize(ctx context.Context, orgID, userID string) (twofactor.GenerateResult, error)
	OrganizationValidate(ctx context.Context, orgID, userID, payload string) (twofactor.ValidateResult, error)
}

// SessionMarker records a passed second factor on a session.
type SessionMarker interface {
	MarkTwoFactorVerified(ctx context.Context, sessionID string) error
}

// TwoFactorHandlers serves the Duo endpoints for the session's user.
type TwoFactorHandlers struct {
	Svc      DuoServiceInterface
	Sessions SessionMarker
	Logger   *slog.Logger
}

func (h *TwoFactorHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type authorizeResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Verified bool `json:"verified"`
}

var (
	errUnavailable = errors.New("two-factor provider is not available")
	errInvalid     = errors.New("two-factor verification failed")
	errGeneric     = errors.New("two-factor request could not be completed")
)

// UserStatus reports whether the user's own Duo configuration can be used.
// GET /api/two-factor/duo.
func (h *TwoFactorHandlers) UserStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	ok, err := h.Svc.UserAvailable(r.Context(), sess.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, availabilityResponse{Available: ok})
}

// UserAuthorize starts a Duo attempt with the user's own configuration.
// POST /api/two-factor/duo/authorize.
func (h *TwoFactorHandlers) UserAuthorize(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	res, err := h.Svc.UserAuthorize(r.Context(), sess.UserID)
	h.writeGenerate(w, r, res, err)
}

// UserValidate completes a Duo attempt with the user's own configuration.
// POST /api/two-factor/duo/validate.
func (h *TwoFactorHandlers) UserValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, _ := SessionFromContext(r.Context())
	res, err := h.Svc.UserValidate(r.Context(), sess.UserID, strings.TrimSpace(req.Token))
	h.writeValidate(w, r, res, err)
}

// OrganizationStatus reports whether the organization's Duo policy can be used.
// GET /api/organizations/{orgID}/two-factor/duo.
func (h *TwoFactorHandlers) OrganizationStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	ok, err := h.Svc.OrganizationAvailable(r.Context(), r.PathValue("orgID"), sess.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, availabilityResponse{Available: ok})
}

// OrganizationAuthorize starts a Duo attempt under the organization's policy.
// POST /api/organizations/{orgID}/two-factor/duo/authorize.
func (h *TwoFactorHandlers) OrganizationAuthorize(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	res, err := h.Svc.OrganizationAuthorize(r.Context(), r.PathValue("orgID"), sess.UserID)
	h.writeGenerate(w, r, res, err)
}

// OrganizationValidate completes a Duo attempt under the organization's policy.
// POST /api/organizations/{orgID}/two-factor/duo/validate.
func (h *TwoFactorHandlers) OrganizationValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, _ := SessionFromContext(r.Context())
	res, err := h.Svc.OrganizationValidate(r.Context(), r.PathValue("orgID"), sess.UserID, strings.TrimSpace(req.Token))
	h.writeValidate(w, r, res, err)
}

func (h *TwoFactorHandlers) writeGenerate(w http.ResponseWriter, r *http.Request, res twofactor.GenerateResult, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !res.OK() {
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "two_factor_unavailable", Err: errUnavailable})
		return
	}
	WriteJSON(w, http.StatusOK, authorizeResponse{RedirectURL: res.RedirectURL})
}

// writeValidate renders every fail-closed outcome identically.
func (h *TwoFactorHandlers) writeValidate(w http.ResponseWriter, r *http.Request, res twofactor.ValidateResult, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !res.OK() {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_two_factor", Err: errInvalid})
		return
	}

	sess, _ := SessionFromContext(r.Context())
	if h.Sessions != nil {
		if markErr := h.Sessions.MarkTwoFactorVerified(r.Context(), sess.ID); markErr != nil {
			h.writeServiceError(w, r, markErr)
			return
		}
	}
	WriteJSON(w, http.StatusOK, validateResponse{Verified: true})
}

func (h *TwoFactorHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusNotFound {
		WriteError(w, ErrorParams{Code: status, ErrCode: "not_found", Err: errors.New("not found")})
		return
	}
	h.logger().ErrorContext(r.Context(), "two-factor request failed",
		"error", err, "code", apperrors.GetCode(err), "path", r.URL.Path)
	WriteError(w, ErrorParams{Code: status, ErrCode: "two_factor_error", Err: errGeneric})
}
