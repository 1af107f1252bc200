package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"dispatch/internal/domain"
)

// newValidator returns a validator with the order_status tag registered.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	_ = v.RegisterValidation("order_status", func(fl validatorv10.FieldLevel) bool {
		return domain.OrderStatus(fl.Field().String()).IsValid()
	})
	return v
}

// bindAndValidate binds the JSON body into out and validates it. On failure
// it writes a 400 and returns false.
func bindAndValidate(c *gin.Context, out any, v *validatorv10.Validate) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"msg":   err.Error(),
		})
		return false
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": validationErrorsToMap(err),
		})
		return false
	}
	return true
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}

// placeRequest is a coordinate pair with an optional address label.
type placeRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address   string   `json:"address" validate:"max=256"`
}

func (p placeRequest) place() domain.Place {
	return domain.Place{
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
		Address:   p.Address,
	}
}
