package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IPWhitelist restricts a route group to the given addresses. Entries may
// be single IPs ("10.1.2.3") or CIDR ranges ("10.0.0.0/8"); malformed
// entries are ignored. An empty list admits everyone, which the server
// warns about at startup.
func IPWhitelist(entries []string) gin.HandlerFunc {
	var (
		exact = make(map[string]struct{}, len(entries))
		nets  []*net.IPNet
	)
	for _, e := range entries {
		if _, ipnet, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, ipnet)
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			exact[ip.String()] = struct{}{}
		}
	}
	open := len(exact) == 0 && len(nets) == 0

	allowed := func(addr string) bool {
		ip := net.ParseIP(addr)
		if ip == nil {
			return false
		}
		if _, ok := exact[ip.String()]; ok {
			return true
		}
		for _, n := range nets {
			if n.Contains(ip) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		if open || allowed(c.ClientIP()) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
