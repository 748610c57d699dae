package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stockledger/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal validates as a float so min/gt tags apply to money.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate binds the JSON body and runs validator tags. It writes the
// error response itself and returns false when the caller should stop.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, newAPIError("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.AbortWithStatusJSON(http.StatusBadRequest, newAPIError(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, newValidationAPIError(fields))
		return false
	}
	return true
}

// dateRange reads the start and end query parameters.
func dateRange(c *gin.Context) (domain.Date, domain.Date, error) {
	start, err := domain.ParseDate(c.Query("start"))
	if err != nil {
		return domain.Date{}, domain.Date{}, domain.NewValidationError("start", "expected YYYY-MM-DD", c.Query("start"))
	}
	end, err := domain.ParseDate(c.Query("end"))
	if err != nil {
		return domain.Date{}, domain.Date{}, domain.NewValidationError("end", "expected YYYY-MM-DD", c.Query("end"))
	}
	if end.Before(start.Time) {
		return domain.Date{}, domain.Date{}, domain.NewValidationError("end", "must not be before start", c.Query("end"))
	}
	return start, end, nil
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
