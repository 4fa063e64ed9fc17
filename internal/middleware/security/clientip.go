package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"fiscal/internal/log"
)

// Detector resolves client addresses behind trusted proxies and flags
// requests that look like scans.
type Detector struct {
	trustedProxies []*net.IPNet
	suspicious     atomic.Int64
	logger         *log.Logger
}

func NewDetector(logger *log.Logger) *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			parseCIDR("127.0.0.0/8"),    // localhost
			parseCIDR("10.0.0.0/8"),     // private networks
			parseCIDR("172.16.0.0/12"),  // private networks
			parseCIDR("192.168.0.0/16"), // private networks
			parseCIDR("::1/128"),        // localhost
		},
		logger: logger.WithComponent(log.ComponentSecurity),
	}
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// ExtractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !d.isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if clientIP := strings.TrimSpace(first); net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "scanner"}
	unusualMethods   = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

// IsSuspicious reports whether the request matches a known probing pattern.
func (d *Detector) IsSuspicious(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return true
		}
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range suspiciousAgents {
		if strings.Contains(userAgent, agent) {
			return true
		}
	}

	for _, method := range unusualMethods {
		if r.Method == method {
			return true
		}
	}

	// More than 5 proxy hops
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return true
	}
	return len(r.URL.String()) > 2048
}

// Middleware logs suspicious requests and passes every request through.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.IsSuspicious(r) {
			d.suspicious.Add(1)
			d.logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, d.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// SuspiciousCount returns the number of flagged requests seen so far.
func (d *Detector) SuspiciousCount() int64 {
	return d.suspicious.Load()
}
