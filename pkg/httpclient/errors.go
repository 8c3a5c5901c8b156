package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// backendError mirrors the error body of the storefront REST backend:
// {"detail": "message"} or, for request validation failures,
// {"detail": [{"loc": [...], "msg": "..."}]}.
type backendError struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError. service names the backend in messages.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	message := detailMessage(body)
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(message)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperrors.Unauthorized(message)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(message)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s: %s", service, message))
	default:
		return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, message)
	}
}

func detailMessage(body []byte) string {
	var be backendError
	if json.Unmarshal(body, &be) != nil || len(be.Detail) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(be.Detail, &text) == nil {
		return text
	}

	var details []validationDetail
	if json.Unmarshal(be.Detail, &details) == nil {
		msgs := make([]string, 0, len(details))
		for _, d := range details {
			if field := lastLoc(d.Loc); field != "" {
				msgs = append(msgs, field+": "+d.Msg)
			} else {
				msgs = append(msgs, d.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}
