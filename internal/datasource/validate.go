package datasource

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New()

// validateRecord checks struct tags on an upstream record and reports
// failures as invalid_data so callers can skip the record.
func validateRecord(source string, record interface{}) error {
	if err := recordValidator.Struct(record); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
		}
		return NewDataSourceError(source, ErrCodeInvalidData, "record failed validation: "+strings.Join(fields, ", "), err)
	}
	return nil
}
