package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const fetchTimeout = 30 * time.Second

// maxTextLength 送入推理服务的正文上限（字节）
const maxTextLength = 5000

// ErrDisallowedURL 非 http(s) 地址或指向内网、回环、链路本地地址
var ErrDisallowedURL = errors.New("scraper: url not allowed")

// Fetcher 抓取网页正文
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ReadabilityFetcher 使用 go-readability 提取正文，只访问公网地址
type ReadabilityFetcher struct {
	Timeout time.Duration

	allowPrivate bool
}

var _ Fetcher = ReadabilityFetcher{}

func (f ReadabilityFetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pageURL, err := url.ParseRequestURI(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Hostname() == "" {
		return "", fmt.Errorf("%w: %s", ErrDisallowedURL, rawURL)
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = fetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("fetch %s: not an HTML document", rawURL)
	}
	article, err := readability.FromReader(resp.Body, resp.Request.URL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return truncate(strings.TrimSpace(article.TextContent), maxTextLength), nil
}

// client 在建立连接时校验解析后的地址，重定向同样受限
func (f ReadabilityFetcher) client() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !f.allowPrivate {
		dialer.Control = guardAddress
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Transport: transport}
}

func guardAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !publicIP(ip) {
		return fmt.Errorf("%w: %s", ErrDisallowedURL, address)
	}
	return nil
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsUnspecified() || ip.IsMulticast())
}

// truncate 按字节截断但不拆开多字节字符
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
