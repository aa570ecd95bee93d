package lead

// DeleteOutcome tells a confirmed delete apart from one that matched nothing.
// Row-level ownership makes a foreign or missing id look like success with
// zero rows, so callers must check IsConfirmed rather than just the error.
type DeleteOutcome struct {
	affected int64
}

func Confirmed(n int64) DeleteOutcome { return DeleteOutcome{affected: n} }

var NotFound = DeleteOutcome{}

func (o DeleteOutcome) IsConfirmed() bool { return o.affected > 0 }

func (o DeleteOutcome) Affected() int64 { return o.affected }

func (o DeleteOutcome) String() string {
	if o.IsConfirmed() {
		return "confirmed"
	}
	return "not_found"
}
