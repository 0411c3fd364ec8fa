package middleware

import "github.com/gofiber/fiber/v2"

// ClientIP returns the submitting client's address: the first entry of the
// X-Forwarded-For chain when present, otherwise the direct peer address.
func ClientIP(c *fiber.Ctx) string {
	if ips := c.IPs(); len(ips) > 0 {
		return ips[0]
	}
	return c.IP()
}
