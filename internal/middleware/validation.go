package middleware

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/pool"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// ValidateVideoInfoRequest checks the body of a video info request
func ValidateVideoInfoRequest(req *types.VideoInfoRequest) error {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return apperrors.ErrURLRequired
	}
	return nil
}

// ValidateProxyTarget parses a proxy target and checks it against the host
// allowlist. An entry also matches its subdomains. An empty allowlist permits
// any public host but rejects localhost and internal IP literals.
func ValidateProxyTarget(raw string, allowedHosts []string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrInvalidProxyURL
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
		return nil, apperrors.ErrInvalidProxyURL.WithCause(err)
	}

	if len(allowedHosts) > 0 {
		if !hostAllowed(target.Hostname(), allowedHosts) {
			return nil, apperrors.ErrProxyHostDenied
		}
	} else if internalHost(target.Hostname()) {
		return nil, apperrors.ErrProxyHostDenied
	}

	return target, nil
}

func internalHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return !pool.IsPublicIP(ip)
	}
	return false
}

func hostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(entry), "."))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// ErrorHandler converts errors returned by handlers into JSON error bodies
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		statusCode := apperrors.GetStatusCode(err)
		message := apperrors.GetErrorMessage(err)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			statusCode = fiberErr.Code
			message = fiberErr.Message
		}

		if statusCode >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.Int("status", statusCode),
				zap.String("error_code", apperrors.GetErrorCode(err)),
			)
		} else {
			logger.Debug("Request rejected",
				zap.String("path", c.Path()),
				zap.Int("status", statusCode),
				zap.String("error_code", apperrors.GetErrorCode(err)),
			)
		}

		return c.Status(statusCode).JSON(types.ErrorResponse{
			Success: false,
			Error:   message,
		})
	}
}
