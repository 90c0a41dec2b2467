package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"

	"github.com/go-playground/validator/v10"
)

// validateCurrencyCode код валюты: ровно три латинские буквы в верхнем регистре.
// Встроенный тег iso4217 не подходит: шлюз принимает и коды вне ISO справочника.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if len(str) != 3 {
		return false
	}
	for i := 0; i < len(str); i++ {
		if str[i] < 'A' || str[i] > 'Z' {
			return false
		}
	}
	return true
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)
	if err := v.RegisterValidation("currency_code", validateCurrencyCode); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
