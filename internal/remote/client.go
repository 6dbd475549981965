// Package remote provides the shared HTTP plumbing for the clients of the
// remote service's API surfaces. Mutating calls are signed transparently:
// the client obtains a user action token for the exact request it is about
// to send and attaches it as a header.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	"github.com/allisson/stepup/internal/config"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// Header names for application identity and the user action proof.
const (
	HeaderAppID      = "X-App-Id"
	HeaderUserAction = "X-User-Action"
)

// TokenProvider supplies user action tokens for mutating requests. It is
// satisfied by usecase.UserActionUseCase.
type TokenProvider interface {
	SignAction(ctx context.Context, action *authDomain.UserAction) (*authDomain.UserActionToken, error)
	AuthorizeExecution(token *authDomain.UserActionToken, action *authDomain.UserAction) error
}

// Client carries the shared HTTP plumbing for the remote API surfaces.
type Client struct {
	baseURL    string
	appID      string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client from the service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		appID:      cfg.APIAppID,
		authToken:  cfg.APIAuthToken,
		httpClient: &http.Client{Timeout: cfg.APIRequestTimeout},
		logger:     logger,
	}
}

// Do sends one JSON request and decodes the response into out (when out is
// non-nil). token may be nil for calls that need no user action proof.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	payload []byte,
	token *authDomain.UserActionToken,
	out interface{},
) error {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if c.appID != "" {
		req.Header.Set(HeaderAppID, c.appID)
	}
	if token != nil {
		req.Header.Set(HeaderUserAction, token.Value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.decodeError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// SignAndDo runs the user action protocol for the request and sends it with
// the resulting token attached. The local fingerprint check runs before the
// token leaves the process, so a token/request mismatch fails without a
// network round trip.
func (c *Client) SignAndDo(
	ctx context.Context,
	tokens TokenProvider,
	method, path string,
	payload []byte,
	out interface{},
) error {
	action := &authDomain.UserAction{Method: method, Path: path, Payload: payload}
	token, err := tokens.SignAction(ctx, action)
	if err != nil {
		return err
	}
	if err := tokens.AuthorizeExecution(token, action); err != nil {
		return err
	}
	return c.Do(ctx, method, path, payload, token, out)
}

// wireError is the error envelope the remote service returns.
type wireError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError maps the remote error envelope onto the local error taxonomy.
// Wire codes take precedence over HTTP status because a single status can
// carry several protocol conditions (an expired and a consumed challenge are
// both 401).
func (c *Client) decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope wireError
	_ = json.Unmarshal(raw, &envelope)
	message := envelope.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	c.logger.Debug("remote call rejected",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("code", envelope.Error.Code),
	)

	if base := errorForWireCode(envelope.Error.Code); base != nil {
		return apperrors.Wrap(base, message)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Wrap(apperrors.ErrInvalidInput, message)
	case http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrForbidden, message)
	case http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrNotFound, message)
	case http.StatusConflict:
		return apperrors.Wrap(apperrors.ErrConflict, message)
	default:
		return apperrors.Wrap(apperrors.ErrUnavailable, fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, message))
	}
}

// wireCodeErrors maps protocol-level error codes to domain errors. Surface
// packages register their codes at init time; unknown codes fall back to
// status mapping.
var wireCodeErrors = map[string]error{}

// RegisterErrorCode binds a wire error code to a domain error. Init-time
// only; not safe for concurrent use with Do.
func RegisterErrorCode(code string, err error) {
	wireCodeErrors[code] = err
}

func errorForWireCode(code string) error {
	return wireCodeErrors[code]
}
