package media

import "golang.org/x/text/language"

// Validator inspects declared type and size only. It never reads the body
// and never touches the network.
type Validator struct {
	msgs Messages
}

// NewValidator returns a validator whose rejection reasons are rendered
// in tag.
func NewValidator(tag language.Tag) *Validator {
	return &Validator{msgs: NewMessages(tag)}
}

// Validate accepts f and returns its kind, or rejects it with an *Error
// whose stage is ErrValidation.
func (v *Validator) Validate(f File) (Kind, error) {
	k := f.Kind()
	if k == KindUnknown {
		return k, NewError(ErrValidation, v.msgs.UnsupportedType(), nil)
	}
	if f.Size > MaxBytes(k) {
		return k, NewError(ErrValidation, v.msgs.TooLarge(k), nil)
	}
	return k, nil
}

// ValidateAs is Validate plus a requirement that the file is of kind want.
func (v *Validator) ValidateAs(f File, want Kind) error {
	k, err := v.Validate(f)
	if err != nil {
		return err
	}
	if k != want {
		return NewError(ErrValidation, v.msgs.WrongKind(want), nil)
	}
	return nil
}

// ValidateVisual accepts only files that may enter the media gallery.
func (v *Validator) ValidateVisual(f File) (Kind, error) {
	k, err := v.Validate(f)
	if err != nil {
		return k, err
	}
	if !k.Visual() {
		return k, NewError(ErrValidation, v.msgs.UnsupportedType(), nil)
	}
	return k, nil
}
