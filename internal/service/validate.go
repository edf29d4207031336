package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// validateStruct 执行结构体校验，失败时返回 "字段:规则" 列表
func validateStruct(sentinel error, v interface{}) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+":"+fe.Tag())
	}
	return &FieldError{sentinel: sentinel, Fields: fields}
}

// FieldError 字段级校验错误
type FieldError struct {
	sentinel error
	Fields   []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.sentinel, strings.Join(e.Fields, ", "))
}

func (e *FieldError) Unwrap() error {
	return e.sentinel
}
