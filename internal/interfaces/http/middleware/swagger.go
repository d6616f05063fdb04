package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
)

// SwaggerConfig controls access to the API documentation
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // addresses or CIDR prefixes; empty allows everyone
}

// SwaggerProtection hides the docs when disabled and restricts them to the
// allowed addresses otherwise
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	var prefixes []netip.Prefix
	for _, s := range cfg.AllowedIPs {
		s = strings.TrimSpace(s)
		if p, err := netip.ParsePrefix(s); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", GetRequestID(c)))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !ipAllowed(c.ClientIP(), prefixes) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func ipAllowed(ip string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
