package memories

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidContent wraps every rule violation of a page payload.
var ErrInvalidContent = errors.New("invalid memory content")

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pagecolor", func(fl validator.FieldLevel) bool {
		return colorPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateContent applies the struct rules on media.Content plus the
// ordering invariant. Published pages additionally need a title and a
// description.
func validateContent(v *validator.Validate, c media.Content, publish bool) error {
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	if err := media.CheckPositions(c.Media); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	if publish && (media.Blank(c.Title) || media.Blank(c.Description)) {
		return fmt.Errorf("%w: title and description are required to publish", ErrInvalidContent)
	}
	return nil
}
