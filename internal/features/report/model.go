package report

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportType string

const (
	ReportTypeRegister     ReportType = "register"
	ReportTypeProductivity ReportType = "productivity"
	ReportTypeApprovalTime ReportType = "approval_time"
)

// ReportFilter narrows the document set a report runs over. Zero values mean
// "no restriction" for that dimension.
type ReportFilter struct {
	From         *time.Time         `json:"from,omitempty" bson:"from,omitempty"`
	To           *time.Time         `json:"to,omitempty" bson:"to,omitempty"`
	DepartmentID primitive.ObjectID `json:"departmentId,omitempty" bson:"department_id,omitempty"`
	TypeID       primitive.ObjectID `json:"typeId,omitempty" bson:"type_id,omitempty"`
	Status       string             `json:"status,omitempty" bson:"status,omitempty"`
}

// Report is a saved report configuration that can be re-run or exported.
type Report struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID `json:"tenantId" bson:"tenant_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	ReportType  ReportType         `json:"reportType" bson:"report_type"`
	Filter      ReportFilter       `json:"filter" bson:"filter"`
	CreatedBy   primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	UpdatedBy   primitive.ObjectID `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (r *Report) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ReportType, validation.Required, validation.In(
			ReportTypeRegister, ReportTypeProductivity, ReportTypeApprovalTime)),
	)
}

// RegisterRow is one line of the document register: every numbered document
// with its resolved type and department names.
type RegisterRow struct {
	Number         string     `json:"number" bson:"number"`
	Title          string     `json:"title" bson:"title"`
	Version        string     `json:"version" bson:"version"`
	Status         string     `json:"status" bson:"status"`
	TypeName       string     `json:"typeName" bson:"type_name"`
	DepartmentName string     `json:"departmentName" bson:"department_name"`
	AuthorName     string     `json:"authorName" bson:"author_name"`
	CreatedAt      time.Time  `json:"createdAt" bson:"created_at"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty" bson:"submitted_at,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty" bson:"decided_at,omitempty"`
}

// ProductivityRow counts documents per author and department over a period.
type ProductivityRow struct {
	AuthorName     string `json:"authorName" bson:"author_name"`
	DepartmentName string `json:"departmentName" bson:"department_name"`
	Created        int64  `json:"created" bson:"created"`
	Approved       int64  `json:"approved" bson:"approved"`
	Rejected       int64  `json:"rejected" bson:"rejected"`
}

// StepDuration is the time a single approval step spent waiting for its
// decision, measured from when the step became current.
type StepDuration struct {
	StepName string  `json:"stepName"`
	Hours    float64 `json:"hours"`
}

// ApprovalTimeRow summarizes how long a completed approval process took.
type ApprovalTimeRow struct {
	DocumentNumber string         `json:"documentNumber"`
	WorkflowName   string         `json:"workflowName"`
	Outcome        string         `json:"outcome"`
	TotalHours     float64        `json:"totalHours"`
	Steps          []StepDuration `json:"steps"`
}
