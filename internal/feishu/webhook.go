package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	larkevent "github.com/larksuite/oapi-sdk-go/v3/event"

	"github.com/openclaw/openclaw-feishu/internal/config"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// webhookHandler builds the echo handler for one webhook-mode account. The
// SDK dispatcher verifies signatures when an encrypt key is configured;
// otherwise the verification token is checked by hand.
func (m *Monitor) webhookHandler(account config.ResolvedAccount) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
		}
		if int64(len(payload)) > webhookMaxBodyBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
		}
		if err := validateWebhookAuth(payload, account); err != nil {
			return err
		}

		eventDispatcher := m.eventDispatcher(context.WithoutCancel(c.Request().Context()), account)
		resp := eventDispatcher.Handle(c.Request().Context(), &larkevent.EventReq{
			Header:     c.Request().Header,
			Body:       payload,
			RequestURI: c.Request().RequestURI,
		})
		if resp == nil {
			return c.NoContent(http.StatusOK)
		}
		for key, values := range resp.Header {
			for _, value := range values {
				c.Response().Header().Add(key, value)
			}
		}
		c.Response().WriteHeader(resp.StatusCode)
		if len(resp.Body) == 0 {
			return nil
		}
		_, err = c.Response().Write(resp.Body)
		return err
	}
}

func validateWebhookAuth(payload []byte, account config.ResolvedAccount) error {
	if strings.TrimSpace(account.EncryptKey) != "" {
		// Signature verification happens inside the SDK dispatcher.
		return nil
	}
	var fuzzy larkevent.EventFuzzy
	if err := json.Unmarshal(payload, &fuzzy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid feishu webhook payload: %v", err))
	}
	if larkevent.ReqType(strings.TrimSpace(fuzzy.Type)) == larkevent.ReqTypeChallenge {
		return nil
	}
	expectedToken := strings.TrimSpace(account.VerificationToken)
	if expectedToken == "" {
		return echo.NewHTTPError(http.StatusForbidden, "feishu webhook requires verificationToken when encryptKey is empty")
	}
	requestToken := strings.TrimSpace(fuzzy.Token)
	if fuzzy.Header != nil && strings.TrimSpace(fuzzy.Header.Token) != "" {
		requestToken = strings.TrimSpace(fuzzy.Header.Token)
	}
	if requestToken == "" || requestToken != expectedToken {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid feishu webhook token")
	}
	return nil
}
