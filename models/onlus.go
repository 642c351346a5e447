package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationStatus tracks the ONLUS onboarding lifecycle.
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "draft"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
)

type ComplianceStatus string

const (
	ComplianceCompliant   ComplianceStatus = "compliant"
	ComplianceNeedsReview ComplianceStatus = "needs_review"
	ComplianceSuspended   ComplianceStatus = "suspended"
)

// OnlusApplication is submitted by an organization representative and
// reviewed by platform admins before an organization goes live.
type OnlusApplication struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ApplicantID primitive.ObjectID `json:"applicant_id" bson:"applicant_id"`

	Name        string  `json:"name" bson:"name"`
	TaxCode     string  `json:"tax_code" bson:"tax_code"`
	Description string  `json:"description" bson:"description"`
	Website     *string `json:"website,omitempty" bson:"website,omitempty"`
	ContactMail string  `json:"contact_email" bson:"contact_email"`

	Status          ApplicationStatus   `json:"status" bson:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	ReviewedBy      *primitive.ObjectID `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`

	Documents []ComplianceDocument `json:"documents" bson:"documents"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty" bson:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// ComplianceDocument is stored in object storage; only the key and metadata
// live on the document.
type ComplianceDocument struct {
	Key         string    `json:"-" bson:"key"`
	URL         string    `json:"url,omitempty" bson:"-"`
	Kind        string    `json:"kind" bson:"kind"` // statute, tax_certificate, bank_statement
	ContentType string    `json:"content_type" bson:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// OnlusOrganization is a verified charity able to receive donations.
type OnlusOrganization struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ApplicationID primitive.ObjectID `json:"application_id" bson:"application_id"`

	Name        string  `json:"name" bson:"name"`
	TaxCode     string  `json:"tax_code" bson:"tax_code"`
	Description string  `json:"description" bson:"description"`
	Website     *string `json:"website,omitempty" bson:"website,omitempty"`

	Verified bool `json:"verified" bson:"verified"`
	Active   bool `json:"active" bson:"active"`

	Compliance      ComplianceStatus `json:"compliance_status" bson:"compliance_status"`
	ComplianceScore int              `json:"compliance_score" bson:"compliance_score"`
	LastReviewedAt  *time.Time       `json:"last_reviewed_at,omitempty" bson:"last_reviewed_at,omitempty"`

	TotalReceived  int64 `json:"total_received" bson:"total_received"`
	DonationsCount int64 `json:"donations_count" bson:"donations_count"`

	Documents []ComplianceDocument `json:"documents,omitempty" bson:"documents,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CanReceiveDonations is the single gate the donation flow checks.
func (o *OnlusOrganization) CanReceiveDonations() bool {
	return o.Verified && o.Active && o.Compliance != ComplianceSuspended
}
