package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicIdentity tags the request's New Relic transaction, started by
// nrgin.Middleware, with the caller identity and the order in the path.
func NewRelicIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if id := c.GetHeader(RiderIDHeader); id != "" {
			txn.AddAttribute("rider.id", id)
		}
		if id := c.GetHeader(CustomerIDHeader); id != "" {
			txn.AddAttribute("customer.id", id)
		}
		if id := c.Param("id"); id != "" {
			txn.AddAttribute("order.id", id)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
