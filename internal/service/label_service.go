package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/pkg/export"
)

// AssignedLister reads roster records that occupy a slot.
type AssignedLister interface {
	ListAssigned(ctx context.Context, grade int) ([]models.Student, error)
}

// LabelService renders the printable slot label sheet handed out at the
// start of term. One row per assigned slot, optionally filtered by grade.
type LabelService struct {
	students AssignedLister
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewLabelService constructs a label service.
func NewLabelService(students AssignedLister, logger *zap.Logger) *LabelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelService{students: students, pdf: export.NewPDFExporter(), logger: logger}
}

// RenderSheet builds the PDF label sheet. grade 0 means all grades.
func (s *LabelService) RenderSheet(ctx context.Context, grade int) ([]byte, error) {
	students, err := s.students.ListAssigned(ctx, grade)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Slot", "Name", "Grade", "Student ID"},
		Rows:    make([]map[string]string, 0, len(students)),
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Slot":       st.SlotID,
			"Name":       st.FullName,
			"Grade":      strconv.Itoa(st.Grade),
			"Student ID": st.StudentID,
		})
	}

	title := "Phone Slot Labels"
	if grade > 0 {
		title = "Phone Slot Labels - Grade " + strconv.Itoa(grade)
	}
	s.logger.Debug("rendering label sheet", zap.Int("students", len(students)), zap.Int("grade", grade))
	return s.pdf.Render(dataset, title)
}
