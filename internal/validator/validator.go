// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("project_type", validateProjectType)
		_ = v.RegisterValidation("account_class", validateAccountClass)
		_ = v.RegisterValidation("head_status", validateHeadStatus)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
	}
}

func validateProjectType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Public", "Profit":
		return true
	}
	return false
}

func validateAccountClass(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "asset", "liability", "net_asset", "revenue", "expense":
		return true
	}
	return false
}

func validateHeadStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DRAFT", "APPROVED", "REJECTED":
		return true
	}
	return false
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "bank_transfer", "card", "cash":
		return true
	}
	return false
}
