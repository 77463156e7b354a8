package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// NewValidator returns a validator with the curriculum enum tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("bloom_level", func(fl validator.FieldLevel) bool {
		switch models.BloomLevel(fl.Field().String()) {
		case models.BloomRemember, models.BloomUnderstand, models.BloomApply,
			models.BloomAnalyze, models.BloomEvaluate, models.BloomCreate:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("requisite_type", func(fl validator.FieldLevel) bool {
		switch models.RequisiteType(fl.Field().String()) {
		case models.RequisitePrerequisite, models.RequisiteCorequisite, models.RequisiteAdvisory:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("program_type", func(fl validator.FieldLevel) bool {
		switch models.ProgramType(fl.Field().String()) {
		case models.ProgramTypeAA, models.ProgramTypeAS, models.ProgramTypeAAT,
			models.ProgramTypeAST, models.ProgramTypeCertificate:
			return true
		}
		return false
	})
	return v
}
