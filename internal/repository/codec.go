package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so errors match what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRecord runs the struct's validate tags and converts the first
// failure into an *apperrors.ValidationError.
func validateRecord(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &apperrors.ValidationError{Field: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}

// ValidateEmail checks an address with the same rules the records use.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &apperrors.ValidationError{Field: "email", Rule: verrs[0].Tag()}
		}
		return err
	}
	return nil
}

// toDoc encodes a record struct into the document shape the store keeps.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return doc, nil
}

// fromDoc decodes and validates a stored document.
func fromDoc[T any](doc bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, &apperrors.ValidationError{Field: "document", Rule: "decode"}
	}
	if err := validateRecord(out); err != nil {
		return out, err
	}
	return out, nil
}
