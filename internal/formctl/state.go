package formctl

// SelectionOutcome is what the file guard does after a change event.
type SelectionOutcome struct {
	// Label is set when the upload button label must change.
	Label *Label
	// Clear is set when the file input must be emptied.
	Clear bool
	// Alert is set when a banner must be shown.
	Alert *Banner
	Err   error
}

// EvaluateSelection decides the guard's reaction to the file in the input.
// A nil file means the selection was cleared.
func EvaluateSelection(f *FileInfo) SelectionOutcome {
	if f == nil {
		return SelectionOutcome{Label: &Label{Icon: iconUpload, Text: LabelDefault}}
	}
	if err := CheckSelection(*f); err != nil {
		b := BannerFor(err)
		return SelectionOutcome{Clear: true, Alert: &b, Err: err}
	}
	return SelectionOutcome{
		Label: &Label{Icon: iconUpload, Text: labelFilePrefix + TruncateName(f.Name)},
	}
}

// SubmitOutcome is what the interceptor does when the upload form submits.
type SubmitOutcome struct {
	Allow     bool
	BusyLabel string
	Alert     Banner
	Err       error
}

// EvaluateSubmit decides whether the upload form may be posted.
func EvaluateSubmit(f *FileInfo) SubmitOutcome {
	if f == nil {
		return SubmitOutcome{Alert: BannerFor(ErrNoFile), Err: ErrNoFile}
	}
	return SubmitOutcome{
		Allow:     true,
		BusyLabel: LabelBusy,
		Alert:     Banner{Message: MsgProcessing, Severity: SeverityInfo},
	}
}
