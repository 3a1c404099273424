package load

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/libreshelf/librarian/pkg/models"
)

// rowValidator checks extracted rows against the store's column limits before
// any database work. One instance is shared across runs; validator.Validate
// is safe for concurrent use.
type rowValidator struct {
	validate *validator.Validate
}

func newRowValidator() *rowValidator {
	return &rowValidator{validate: validator.New()}
}

// fieldColumns maps struct field names to the source column names reports use.
var fieldColumns = map[string]string{
	"ExternalID":    RoleBookID,
	"Name":          RoleName,
	"CategoryName":  RoleCategoryName,
	"CategoryLabel": RoleCategoryLabel,
	"LocationName":  RoleLocation,
}

// Check returns one RowError per failing field, or nil when the row is clean.
func (v *rowValidator) Check(row Row) []models.RowError {
	err := v.validate.Struct(row)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.RowError{{Row: row.Index, Reason: err.Error()}}
	}

	out := make([]models.RowError, 0, len(verrs))
	for _, fe := range verrs {
		column := fieldColumns[fe.Field()]
		if column == "" {
			column = fe.Field()
		}

		var reason string
		switch fe.Tag() {
		case "required":
			reason = fmt.Sprintf("%s is required", column)
		case "max":
			reason = fmt.Sprintf("%s exceeds %s characters", column, fe.Param())
		default:
			reason = fmt.Sprintf("%s failed %s validation", column, fe.Tag())
		}

		out = append(out, models.RowError{Row: row.Index, Field: column, Reason: reason})
	}
	return out
}
