package domain

// SubjectID is the authenticated subject for a candidate account (typically the
// identity provider's "sub"). We model it as an opaque identifier: its format is
// controlled by the IdP and it is immutable for the lifetime of the account.
type SubjectID string

// ResumeID is an internal identifier for a saved resume record.
type ResumeID string
