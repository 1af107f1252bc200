package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// RiderIDHeader carries the authenticated rider, set by the gateway.
	RiderIDHeader = "X-Rider-ID"

	// CustomerIDHeader carries the authenticated customer, set by the gateway.
	CustomerIDHeader = "X-Customer-ID"

	riderIDKey    = "rider_id"
	customerIDKey = "customer_id"
)

// RequireRider rejects requests without a rider identity.
func RequireRider() gin.HandlerFunc {
	return requireIdentity(RiderIDHeader, riderIDKey)
}

// RequireCustomer rejects requests without a customer identity.
func RequireCustomer() gin.HandlerFunc {
	return requireIdentity(CustomerIDHeader, customerIDKey)
}

func requireIdentity(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + header + " header"})
			return
		}
		c.Set(key, id)
		c.Next()
	}
}

// RiderID returns the rider identity set by RequireRider.
func RiderID(c *gin.Context) string {
	return c.GetString(riderIDKey)
}

// CustomerID returns the customer identity set by RequireCustomer.
func CustomerID(c *gin.Context) string {
	return c.GetString(customerIDKey)
}
