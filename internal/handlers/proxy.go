package handlers

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/extractor"
	"github.com/KeremKalyoncu/vidlink/internal/metrics"
	"github.com/KeremKalyoncu/vidlink/internal/middleware"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

const (
	defaultProxyFilename    = "video.mp4"
	defaultProxyContentType = "video/mp4"
	proxyUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// net/http's own limit, applied when the client has no CheckRedirect
	defaultMaxRedirects = 10
)

// Upstream response headers relayed to the client
var relayedHeaders = []string{
	fiber.HeaderContentType,
	fiber.HeaderContentRange,
	fiber.HeaderAcceptRanges,
	fiber.HeaderLastModified,
	fiber.HeaderETag,
}

// ProxyHandler relays media from CDNs that reject requests without a
// platform Referer, so browsers can download the URLs handed out by the API.
type ProxyHandler struct {
	client       *http.Client
	allowedHosts []string
	streamIdle   time.Duration
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewProxyHandler creates a media proxy handler. Every redirect hop is held to
// the same host rules as the requested URL. streamIdle is how long a streamed
// body may go without a write before the connection is dropped; zero leaves
// the server write timeout in charge of the whole response.
func NewProxyHandler(client *http.Client, allowedHosts []string, streamIdle time.Duration, m *metrics.Metrics, logger *zap.Logger) *ProxyHandler {
	if m == nil {
		m = metrics.GetMetrics()
	}
	if client == nil {
		client = http.DefaultClient
	}

	guarded := *client
	next := client.CheckRedirect
	guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if _, err := middleware.ValidateProxyTarget(req.URL.String(), allowedHosts); err != nil {
			return err
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= defaultMaxRedirects {
			return fmt.Errorf("stopped after %d redirects", defaultMaxRedirects)
		}
		return nil
	}

	return &ProxyHandler{
		client:       &guarded,
		allowedHosts: allowedHosts,
		streamIdle:   streamIdle,
		metrics:      m,
		logger:       logger,
	}
}

// Preflight answers CORS preflight requests for the proxy
func (h *ProxyHandler) Preflight(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
	c.Status(fiber.StatusOK)
	return nil
}

// Proxy streams ?url= to the client with a browser User-Agent and a Referer
// taken from ?referer= or derived from the target host.
func (h *ProxyHandler) Proxy(c *fiber.Ctx) error {
	target, err := middleware.ValidateProxyTarget(c.Query("url"), h.allowedHosts)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodGet, target.String(), nil)
	if err != nil {
		return apperrors.ErrInvalidProxyURL.WithCause(err)
	}
	req.Header.Set("User-Agent", proxyUserAgent)
	if referer := refererForTarget(target.String(), c.Query("referer")); referer != "" {
		req.Header.Set("Referer", referer)
	}
	if rng := c.Get(fiber.HeaderRange); rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		var appErr *apperrors.CustomError
		if errors.As(err, &appErr) {
			h.logger.Warn("Upstream redirect rejected",
				zap.String("host", target.Host),
				zap.Error(err),
			)
			return appErr
		}
		h.logger.Warn("Upstream request failed",
			zap.String("host", target.Host),
			zap.Error(err),
		)
		return apperrors.ErrUpstreamFailed.WithCause(err)
	}

	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		h.logger.Warn("Upstream returned an error status",
			zap.String("host", target.Host),
			zap.Int("status", resp.StatusCode),
		)
		return c.Status(resp.StatusCode).JSON(types.ErrorResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to fetch video: %s", resp.Status),
		})
	}

	for _, name := range relayedHeaders {
		if value := resp.Header.Get(name); value != "" {
			c.Set(name, value)
		}
	}
	if resp.Header.Get(fiber.HeaderContentType) == "" {
		c.Set(fiber.HeaderContentType, defaultProxyContentType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(c.Query("filename"))))

	h.metrics.RecordProxied()
	c.Status(resp.StatusCode)

	var body io.ReadCloser = resp.Body
	if h.streamIdle > 0 {
		body = &idleDeadlineBody{ReadCloser: resp.Body, conn: c.Context().Conn(), idle: h.streamIdle}
	}

	// fasthttp closes the body once it has been written out
	return c.SendStream(body, int(resp.ContentLength))
}

// idleDeadlineBody pushes the connection write deadline forward on every
// read. fasthttp sets one deadline for the whole response, which would cut
// long downloads short.
type idleDeadlineBody struct {
	io.ReadCloser
	conn net.Conn
	idle time.Duration
}

func (b *idleDeadlineBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if b.conn != nil {
		_ = b.conn.SetWriteDeadline(time.Now().Add(b.idle))
	}
	return n, err
}

// refererForTarget prefers an explicit referer, then the platform CDN's own site
func refererForTarget(target, explicit string) string {
	if explicit != "" {
		return explicit
	}
	lower := strings.ToLower(target)
	switch {
	case strings.Contains(lower, "bilibili") || strings.Contains(lower, "bilivideo"):
		return extractor.RefererFor(types.PlatformBilibili)
	case strings.Contains(lower, "douyin"):
		return extractor.RefererFor(types.PlatformDouyin)
	default:
		return ""
	}
}

// sanitizeFilename keeps the Content-Disposition header well formed
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\r', '\n', '/':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return defaultProxyFilename
	}
	return name
}
