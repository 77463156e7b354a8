package dto

import (
	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// ProgramRequest is the payload for creating or replacing a draft program.
type ProgramRequest struct {
	Title        string              `json:"title" validate:"max=255"`
	Description  string              `json:"description"`
	ProgramType  string              `json:"program_type" validate:"required,program_type"`
	TotalUnits   decimal.NullDecimal `json:"total_units" swaggertype:"number"`
	DepartmentID string              `json:"department_id" validate:"required"`
	Version      int                 `json:"version"`
}

// ToModel maps the request onto a program.
func (r ProgramRequest) ToModel() models.Program {
	return models.Program{
		Title:        r.Title,
		Description:  r.Description,
		ProgramType:  models.ProgramType(r.ProgramType),
		TotalUnits:   r.TotalUnits,
		DepartmentID: r.DepartmentID,
	}
}
