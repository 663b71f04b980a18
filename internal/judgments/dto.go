package judgments

// BatchItem is one proposed judgment in a bulk request. Optional fields
// are pointers so that "not supplied" is distinguishable from "set to
// empty"; unspecified fields leave the stored judgment untouched.
type BatchItem struct {
	AssessmentID    int64   `json:"assessmentId" binding:"required,gt=0"`
	HumanResult     *string `json:"humanResult" binding:"omitempty,oneof=ACCEPT OVERRIDE_PASS OVERRIDE_FAIL DEFER NOT_APPLICABLE"`
	HumanConfidence *string `json:"humanConfidence" binding:"omitempty,oneof=HIGH MEDIUM LOW NONE"`
	JudgmentNotes   *string `json:"judgmentNotes" binding:"omitempty,max=5000"`
	OverrideReason  *string `json:"overrideReason" binding:"omitempty,max=2000"`
}

// BatchRequest is the bulk judgment request body.
type BatchRequest struct {
	SubmissionID string      `json:"submissionId" binding:"required"`
	Judgments    []BatchItem `json:"judgments" binding:"required,min=1,max=100,dive"`
}

// ItemResult reports the outcome for one batch item.
type ItemResult struct {
	AssessmentID int64  `json:"assessmentId"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	JudgmentID   string `json:"judgmentId,omitempty"`
}

// BatchResult is the aggregate outcome of a bulk request. One bad item
// never voids its siblings; each is reported independently.
type BatchResult struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []ItemResult `json:"results"`
}

// AllFailed reports whether no item succeeded.
func (r BatchResult) AllFailed() bool { return r.Processed > 0 && r.Succeeded == 0 }

// AllSucceeded reports whether every item succeeded.
func (r BatchResult) AllSucceeded() bool { return r.Failed == 0 }
