package recipe

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"flavorgraph/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct 驗證結構並轉為 ValidationError
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return common.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("field %s failed %s (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("field %s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return common.NewValidationError(strings.Join(msgs, "; "))
}
